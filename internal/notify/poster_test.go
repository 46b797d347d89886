package notify

import (
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/sentinel/internal/report"
)

func TestFormatBreachMessage(t *testing.T) {
	rows := []report.Row{
		{PID: "123456", AssignedMerch: "Ravi Kumar", QueryAt: "2024-10-17 21:40 IST"},
		{PID: "654321", QueryAt: "2024-10-18 09:00 IST"},
	}

	text := formatBreachMessage("rep-1", rows)

	if !strings.Contains(text, "2 PID(s) breached SLA") {
		t.Errorf("missing count: %q", text)
	}
	if !strings.Contains(text, "123456") || !strings.Contains(text, "Ravi Kumar") {
		t.Errorf("missing breach detail: %q", text)
	}
	if !strings.Contains(text, "unassigned") {
		t.Errorf("unmapped PID should read unassigned: %q", text)
	}
}

func TestFormatBreachMessage_CapsListedRows(t *testing.T) {
	rows := make([]report.Row, 15)
	for i := range rows {
		rows[i] = report.Row{PID: "123456", QueryAt: "2024-10-17 21:40 IST"}
	}

	text := formatBreachMessage("rep-1", rows)

	if !strings.Contains(text, "and 5 more") {
		t.Errorf("expected truncation note: %q", text)
	}
	if got := strings.Count(text, "\n"); got != maxListed+2 {
		t.Errorf("line count = %d", got)
	}
}
