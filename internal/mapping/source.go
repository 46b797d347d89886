package mapping

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Source supplies mapping entries from some backing store. Sources are loaded
// once per process through the Cache; load order decides which entry wins
// when PIDs collide.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Entry, error)
}

// FileSource reads a mapping CSV from local disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Load(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	return ParseCSV(string(data)), nil
}

// HTTPSource fetches a mapping CSV from a URL, typically a shared-sheet
// export endpoint.
type HTTPSource struct {
	URL    string
	client *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSource) Name() string { return "http:" + s.URL }

func (s *HTTPSource) Load(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch mapping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch mapping: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mapping body: %w", err)
	}
	return ParseCSV(string(data)), nil
}
