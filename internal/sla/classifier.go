package sla

import (
	"time"

	"github.com/MikeSquared-Agency/sentinel/internal/chat"
	"github.com/MikeSquared-Agency/sentinel/internal/timeline"
)

// Status is the resolution state of a PID timeline.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusBreached Status = "Open — Breached"
	StatusClosed   Status = "Closed"
)

// Policy names select which classifier variant runs. Both have been in
// production; the alternating-sender model is the older one and remains the
// default.
const (
	PolicyAlternating = "alternating"
	PolicyIntent      = "intent"
)

// Default SLA windows per policy.
const (
	DefaultAlternatingSLA = 60 * time.Minute
	DefaultIntentSLA      = 120 * time.Minute
)

// Result is one timeline's classification. Query is the message that opened
// or most recently re-raised the thread; Reply is the qualifying response,
// when one exists. Include is false for rows the policy withholds from the
// report. SortKey is the formatted latest-event timestamp used for ordering
// within a status tier.
type Result struct {
	PID     string
	Status  Status
	Include bool
	Query   *chat.Message
	Reply   *chat.Message
	SortKey string
}

// Classifier assigns a resolution status to one PID timeline. merch is the
// mapped merchandiser display name, empty when the PID is unmapped.
type Classifier interface {
	Name() string
	Classify(tl timeline.Timeline, merch string, now time.Time) Result
}

// New builds the classifier for a policy name. slaWindow <= 0 selects the
// policy's default window. Unknown policy names fall back to alternating.
func New(policy string, slaWindow time.Duration, rules Rules) Classifier {
	if policy == PolicyIntent {
		if slaWindow <= 0 {
			slaWindow = DefaultIntentSLA
		}
		return &IntentClassifier{SLA: slaWindow, Rules: rules}
	}
	if slaWindow <= 0 {
		slaWindow = DefaultAlternatingSLA
	}
	return &AlternatingClassifier{SLA: slaWindow}
}

// FormatTime renders a timestamp the way both policies report it:
// zero-padded "YYYY-MM-DD HH:MM IST" in the fixed +05:30 zone. Lexicographic
// order on the rendered form matches chronological order.
func FormatTime(t time.Time) string {
	return t.In(chat.IST).Format("2006-01-02 15:04") + " IST"
}

// StatusRank orders statuses for report sorting: breached rows first, then
// open, then closed.
func StatusRank(s Status) int {
	switch s {
	case StatusBreached:
		return 0
	case StatusOpen:
		return 1
	default:
		return 2
	}
}

// AlternatingClassifier implements the sender-alternation model. A second
// message from a different sender counts as the reply; one from the same
// sender is a follow-up that leaves the thread open. Only breached timelines
// are surfaced in the report.
type AlternatingClassifier struct {
	SLA time.Duration
}

func (c *AlternatingClassifier) Name() string { return PolicyAlternating }

func (c *AlternatingClassifier) Classify(tl timeline.Timeline, merch string, now time.Time) Result {
	first := tl.Messages[0]
	res := Result{
		PID:     tl.PID,
		Query:   &tl.Messages[0],
		SortKey: FormatTime(first.Timestamp),
	}

	if len(tl.Messages) == 1 {
		if now.Sub(first.Timestamp) > c.SLA {
			res.Status = StatusBreached
			res.Include = true
		} else {
			res.Status = StatusOpen
		}
		return res
	}

	next := tl.Messages[1]
	res.Reply = &tl.Messages[1]

	if next.Sender != first.Sender {
		// A reply arrived. Breach only when it came after the window.
		if next.Timestamp.Sub(first.Timestamp) > c.SLA {
			res.Status = StatusBreached
			res.Include = true
		} else {
			res.Status = StatusClosed
		}
		return res
	}

	// Same-sender follow-up: still unanswered.
	if now.Sub(first.Timestamp) > c.SLA {
		res.Status = StatusBreached
		res.Include = true
	} else {
		res.Status = StatusOpen
	}
	return res
}

// IntentClassifier implements the message-intent model: the latest query-like
// message must be followed by a later message from the PID's assigned
// merchandiser, otherwise the thread is open. Every timeline is surfaced
// regardless of status.
type IntentClassifier struct {
	SLA   time.Duration
	Rules Rules
}

func (c *IntentClassifier) Name() string { return PolicyIntent }

func (c *IntentClassifier) Classify(tl timeline.Timeline, merch string, now time.Time) Result {
	res := Result{PID: tl.PID, Include: true}

	var latestQuery, latestAssigned *chat.Message
	for i := len(tl.Messages) - 1; i >= 0; i-- {
		msg := &tl.Messages[i]
		if latestQuery == nil && c.Rules.isQueryLike(msg.Body) {
			latestQuery = msg
		}
		if latestAssigned == nil && merch != "" && matchesName(msg.Sender, merch, c.Rules.FuzzyThreshold) {
			latestAssigned = msg
		}
		if latestQuery != nil && latestAssigned != nil {
			break
		}
	}

	if latestQuery == nil {
		res.Status = StatusClosed
		return res
	}

	res.Query = latestQuery
	res.Reply = latestAssigned

	if latestAssigned == nil || !latestAssigned.Timestamp.After(latestQuery.Timestamp) {
		res.Status = StatusOpen
		if now.Sub(latestQuery.Timestamp) > c.SLA {
			res.Status = StatusBreached
		}
		res.SortKey = FormatTime(latestQuery.Timestamp)
		return res
	}

	res.Status = StatusClosed
	res.SortKey = FormatTime(latestAssigned.Timestamp)
	return res
}
