package mapping

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes the merged mapping table for the process lifetime. The load
// runs at most once at a time: concurrent first callers share a single
// in-flight load via singleflight instead of racing independent ones. A load
// that yields entries is permanent; a load that fails or comes back empty
// degrades the current request to an empty table and may be retried by a
// later request.
type Cache struct {
	sources []Source
	logger  *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	table Table
}

func NewCache(sources []Source, logger *slog.Logger) *Cache {
	return &Cache{sources: sources, logger: logger}
}

// Table returns the memoized mapping table, loading it on first use. It never
// fails: source errors degrade to an empty table.
func (c *Cache) Table(ctx context.Context) Table {
	c.mu.RLock()
	if c.table != nil {
		defer c.mu.RUnlock()
		return c.table
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do("mapping", func() (any, error) {
		return c.load(ctx), nil
	})
	return v.(Table)
}

// Loaded reports whether a non-empty table has been memoized.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table != nil
}

// Size returns the number of memoized entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.table)
}

func (c *Cache) load(ctx context.Context) Table {
	lists := make([][]Entry, 0, len(c.sources))
	for _, src := range c.sources {
		entries, err := src.Load(ctx)
		if err != nil {
			c.logger.Warn("mapping source failed, skipping", "source", src.Name(), "error", err)
			continue
		}
		c.logger.Info("mapping source loaded", "source", src.Name(), "entries", len(entries))
		lists = append(lists, entries)
	}

	table := Merge(lists...)
	if len(table) == 0 {
		c.logger.Warn("mapping load yielded no entries, serving empty table")
		return table
	}

	c.mu.Lock()
	c.table = table
	c.mu.Unlock()
	return table
}
