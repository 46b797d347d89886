package mapping

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"
)

// Entry is one PID's mapped staff assignment. Either name may be empty.
type Entry struct {
	PID      string
	Designer string
	Merch    string
}

// Table is the PID lookup the classifier and report join against.
type Table map[string]Entry

// Column synonym chains, resolved in priority order against the header row.
var (
	pidColumns      = []string{"pid", "product_id", "productid"}
	designerColumns = []string{"designer_name", "designer", "designername"}
	merchColumns    = []string{"merch_name", "merch", "merchandiser", "merchandisername"}
)

var pidCell = regexp.MustCompile(`\b(\d{6})\b`)

// ExtractPID pulls the standalone 6-digit token out of a raw PID cell,
// returning "" when none is present.
func ExtractPID(cell string) string {
	m := pidCell.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseCSV parses RFC4180-style tabular text into mapping entries. The first
// row is a header; columns are resolved case-insensitively through the
// synonym chains. Rows whose PID cell holds no standalone 6-digit token are
// dropped silently, as are rows when no PID column resolves at all. Later
// duplicates of a PID are dropped, not merged.
func ParseCSV(text string) []Entry {
	text = strings.TrimPrefix(text, "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil
	}

	pidIdx := resolveColumn(header, pidColumns)
	designerIdx := resolveColumn(header, designerColumns)
	merchIdx := resolveColumn(header, merchColumns)
	if pidIdx < 0 {
		return nil
	}

	var entries []Entry
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if pidIdx >= len(row) {
			continue
		}
		m := pidCell.FindStringSubmatch(row[pidIdx])
		if m == nil {
			continue
		}
		pid := m[1]
		if seen[pid] {
			continue
		}
		seen[pid] = true
		entries = append(entries, Entry{
			PID:      pid,
			Designer: cellAt(row, designerIdx),
			Merch:    cellAt(row, merchIdx),
		})
	}
	return entries
}

// Merge folds entry lists into one table. Earliest-loaded entry for a PID
// wins over later ones.
func Merge(lists ...[]Entry) Table {
	table := make(Table)
	for _, list := range lists {
		for _, e := range list {
			if _, ok := table[e.PID]; !ok {
				table[e.PID] = e
			}
		}
	}
	return table
}

// resolveColumn finds the first candidate name present in the header,
// matching case-insensitively on trimmed cells. Returns -1 when none match.
func resolveColumn(header, candidates []string) int {
	for _, want := range candidates {
		for i, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), want) {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
