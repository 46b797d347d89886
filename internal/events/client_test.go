package events

import (
	"encoding/json"
	"testing"
)

func TestBreachEventMarshal(t *testing.T) {
	evt := BreachEvent{
		ReportID:      "rep-001",
		PID:           "123456",
		Designer:      "Asha",
		AssignedMerch: "Ravi Kumar",
		QueryAt:       "2024-10-17 21:40 IST",
		Policy:        "alternating",
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if fields["pid"] != "123456" {
		t.Errorf("expected pid '123456', got '%v'", fields["pid"])
	}
	if fields["assigned_merch"] != "Ravi Kumar" {
		t.Errorf("expected assigned_merch 'Ravi Kumar', got '%v'", fields["assigned_merch"])
	}
	if fields["query_at"] != "2024-10-17 21:40 IST" {
		t.Errorf("expected query_at '2024-10-17 21:40 IST', got '%v'", fields["query_at"])
	}
}

func TestReportEventRoundTrip(t *testing.T) {
	evt := ReportEvent{
		ReportID:     "rep-rt",
		Policy:       "intent",
		Rows:         4,
		Breached:     2,
		MappingCount: 120,
		Timestamp:    "2024-10-20T06:30:00Z",
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed ReportEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed != evt {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, evt)
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectReportGenerated != "swarm.sentinel.report.generated" {
		t.Errorf("unexpected report subject '%s'", SubjectReportGenerated)
	}
	if SubjectBreach != "swarm.sentinel.sla.breach" {
		t.Errorf("unexpected breach subject '%s'", SubjectBreach)
	}
	if SubjectRegistered != "swarm.agent.sentinel.registered" {
		t.Errorf("unexpected registration subject '%s'", SubjectRegistered)
	}
}
