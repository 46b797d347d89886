package timeline

import (
	"testing"
	"time"

	"github.com/MikeSquared-Agency/sentinel/internal/chat"
)

func msg(day, hour, minute int, sender, body string) chat.Message {
	return chat.Message{
		Timestamp: time.Date(2024, 10, day, hour, minute, 0, 0, chat.IST),
		Sender:    sender,
		Body:      body,
	}
}

func TestBuild_GroupsByPID(t *testing.T) {
	msgs := []chat.Message{
		msg(17, 10, 0, "Priya", "PID 123456 status?"),
		msg(17, 11, 0, "Ravi", "123456 shipping today"),
		msg(17, 12, 0, "Priya", "what about 654321?"),
	}

	tls := Build(msgs)
	if len(tls) != 2 {
		t.Fatalf("expected 2 timelines, got %d", len(tls))
	}
	if tls[0].PID != "123456" || len(tls[0].Messages) != 2 {
		t.Errorf("timeline[0] = %s with %d messages", tls[0].PID, len(tls[0].Messages))
	}
	if tls[1].PID != "654321" || len(tls[1].Messages) != 1 {
		t.Errorf("timeline[1] = %s with %d messages", tls[1].PID, len(tls[1].Messages))
	}
}

func TestBuild_MultiPIDMessageAppearsInBoth(t *testing.T) {
	msgs := []chat.Message{
		msg(17, 10, 0, "Priya", "any update on 123456 and 654321?"),
	}

	tls := Build(msgs)
	if len(tls) != 2 {
		t.Fatalf("expected 2 timelines, got %d", len(tls))
	}
	for _, tl := range tls {
		if len(tl.Messages) != 1 {
			t.Errorf("timeline %s has %d messages, want 1", tl.PID, len(tl.Messages))
		}
	}
}

func TestBuild_ChronologicalAndStable(t *testing.T) {
	msgs := []chat.Message{
		msg(18, 9, 0, "C", "123456 third"),
		msg(17, 9, 0, "A", "123456 first"),
		msg(17, 9, 0, "B", "123456 tied with first"),
	}

	tls := Build(msgs)
	if len(tls) != 1 {
		t.Fatalf("expected 1 timeline, got %d", len(tls))
	}
	seq := tls[0].Messages
	for i := 1; i < len(seq); i++ {
		if seq[i].Timestamp.Before(seq[i-1].Timestamp) {
			t.Errorf("timeline out of order at %d", i)
		}
	}
	// Equal timestamps keep insertion order.
	if seq[0].Sender != "A" || seq[1].Sender != "B" || seq[2].Sender != "C" {
		t.Errorf("order = %s %s %s, want A B C", seq[0].Sender, seq[1].Sender, seq[2].Sender)
	}
}

func TestBuild_NoPIDsNoTimelines(t *testing.T) {
	msgs := []chat.Message{msg(17, 10, 0, "Priya", "hello team")}
	if tls := Build(msgs); len(tls) != 0 {
		t.Errorf("expected no timelines, got %d", len(tls))
	}
}
