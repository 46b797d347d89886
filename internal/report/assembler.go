package report

import (
	"encoding/csv"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
	"github.com/MikeSquared-Agency/sentinel/internal/sla"
)

// previewLimit caps message preview text in report rows.
const previewLimit = 160

// Row is one reported PID with its joined mapping metadata. QueryAt/Reply
// fields hold formatted timestamps and truncated previews; they are empty
// when the policy has nothing to show (e.g. a closed timeline with no query).
type Row struct {
	PID           string `json:"pid"`
	Designer      string `json:"designer"`
	AssignedMerch string `json:"assigned_merch"`
	Status        string `json:"status"`
	QueryAt       string `json:"query_at,omitempty"`
	QueryPreview  string `json:"query_preview,omitempty"`
	ReplyAt       string `json:"reply_at,omitempty"`
	ReplyPreview  string `json:"reply_preview,omitempty"`

	sortKey string
	rank    int
}

// Report is the assembled output: ordered rows, their CSV rendering, and the
// count of rows whose mapping lookup succeeded.
type Report struct {
	Rows        []Row
	CSV         string
	MatchedPIDs int
}

var csvHeader = []string{"pid", "designer", "assigned_merch", "status", "query_at", "query_preview", "reply_at", "reply_preview"}

// Assemble joins classification results with mapping metadata, applies the
// policy sort order (breached, open, closed; newest first within each tier),
// and renders the CSV form.
func Assemble(results []sla.Result, table mapping.Table) *Report {
	rows := make([]Row, 0, len(results))
	matched := 0

	for _, res := range results {
		if !res.Include {
			continue
		}
		ent := table[res.PID]
		if ent.Designer != "" || ent.Merch != "" {
			matched++
		}
		row := Row{
			PID:           res.PID,
			Designer:      ent.Designer,
			AssignedMerch: ent.Merch,
			Status:        string(res.Status),
			sortKey:       res.SortKey,
			rank:          sla.StatusRank(res.Status),
		}
		if res.Query != nil {
			row.QueryAt = sla.FormatTime(res.Query.Timestamp)
			row.QueryPreview = truncate(res.Query.Body)
		}
		if res.Reply != nil {
			row.ReplyAt = sla.FormatTime(res.Reply.Timestamp)
			row.ReplyPreview = truncate(res.Reply.Body)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].rank != rows[j].rank {
			return rows[i].rank < rows[j].rank
		}
		return rows[i].sortKey > rows[j].sortKey
	})

	return &Report{
		Rows:        rows,
		CSV:         renderCSV(rows),
		MatchedPIDs: matched,
	}
}

// renderCSV writes the rows as RFC4180 text with a header line. encoding/csv
// wraps fields containing commas, quotes or newlines in double quotes and
// doubles embedded quotes, so the output re-parses to the same values.
func renderCSV(rows []Row) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(csvHeader)
	for _, r := range rows {
		_ = w.Write([]string{r.PID, r.Designer, r.AssignedMerch, r.Status, r.QueryAt, r.QueryPreview, r.ReplyAt, r.ReplyPreview})
	}
	w.Flush()
	return sb.String()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit])
}
