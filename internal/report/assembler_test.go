package report

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/sentinel/internal/chat"
	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
	"github.com/MikeSquared-Agency/sentinel/internal/sla"
)

func msgAt(day, hour, minute int, body string) *chat.Message {
	return &chat.Message{
		Timestamp: time.Date(2024, 10, day, hour, minute, 0, 0, chat.IST),
		Sender:    "Priya",
		Body:      body,
	}
}

func result(pid string, status sla.Status, include bool, query *chat.Message) sla.Result {
	res := sla.Result{PID: pid, Status: status, Include: include, Query: query}
	if query != nil {
		res.SortKey = sla.FormatTime(query.Timestamp)
	}
	return res
}

func TestAssemble_JoinsAndFilters(t *testing.T) {
	table := mapping.Table{
		"123456": {PID: "123456", Designer: "Asha", Merch: "Ravi Kumar"},
	}
	results := []sla.Result{
		result("123456", sla.StatusBreached, true, msgAt(17, 21, 40, "Any update?")),
		result("654321", sla.StatusClosed, false, msgAt(17, 10, 0, "done")),
		result("777777", sla.StatusBreached, true, msgAt(16, 9, 0, "still waiting")),
	}

	rep := Assemble(results, table)
	require.Len(t, rep.Rows, 2)

	assert.Equal(t, "123456", rep.Rows[0].PID)
	assert.Equal(t, "Asha", rep.Rows[0].Designer)
	assert.Equal(t, "Ravi Kumar", rep.Rows[0].AssignedMerch)
	assert.Equal(t, "2024-10-17 21:40 IST", rep.Rows[0].QueryAt)

	// Unmapped PID joins empty metadata.
	assert.Equal(t, "777777", rep.Rows[1].PID)
	assert.Empty(t, rep.Rows[1].Designer)

	assert.Equal(t, 1, rep.MatchedPIDs)
}

func TestAssemble_SortOrder(t *testing.T) {
	results := []sla.Result{
		result("111111", sla.StatusClosed, true, msgAt(18, 9, 0, "closed late")),
		result("222222", sla.StatusBreached, true, msgAt(16, 9, 0, "old breach")),
		result("333333", sla.StatusBreached, true, msgAt(18, 9, 0, "new breach")),
		result("444444", sla.StatusOpen, true, msgAt(17, 9, 0, "open")),
	}

	rep := Assemble(results, mapping.Table{})
	require.Len(t, rep.Rows, 4)

	// Breached first (newest first within the tier), then open, then closed.
	assert.Equal(t, "333333", rep.Rows[0].PID)
	assert.Equal(t, "222222", rep.Rows[1].PID)
	assert.Equal(t, "444444", rep.Rows[2].PID)
	assert.Equal(t, "111111", rep.Rows[3].PID)
}

func TestAssemble_TruncatesPreviews(t *testing.T) {
	long := strings.Repeat("x", 300)
	rep := Assemble([]sla.Result{
		result("123456", sla.StatusBreached, true, msgAt(17, 21, 40, long)),
	}, mapping.Table{})

	require.Len(t, rep.Rows, 1)
	assert.Len(t, []rune(rep.Rows[0].QueryPreview), 160)
}

func TestCSV_RoundTrip(t *testing.T) {
	nasty := "has, comma and \"quotes\"\nand a newline"
	rep := Assemble([]sla.Result{
		result("123456", sla.StatusBreached, true, msgAt(17, 21, 40, nasty)),
	}, mapping.Table{
		"123456": {PID: "123456", Designer: "Asha, Sr.", Merch: "Ravi"},
	})

	records, err := csv.NewReader(strings.NewReader(rep.CSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, csvHeader, records[0])
	row := records[1]
	assert.Equal(t, "123456", row[0])
	assert.Equal(t, "Asha, Sr.", row[1])
	assert.Equal(t, string(sla.StatusBreached), row[3])
	assert.Equal(t, nasty, row[5])
}

func TestAssemble_EmptyResults(t *testing.T) {
	rep := Assemble(nil, mapping.Table{})
	assert.Empty(t, rep.Rows)
	assert.Equal(t, 0, rep.MatchedPIDs)

	records, err := csv.NewReader(strings.NewReader(rep.CSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
