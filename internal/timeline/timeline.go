package timeline

import (
	"sort"

	"github.com/MikeSquared-Agency/sentinel/internal/chat"
)

// Timeline is the chronologically ordered set of messages mentioning one PID.
type Timeline struct {
	PID      string
	Messages []chat.Message
}

// Build groups messages by every PID each one mentions. A message that
// mentions multiple PIDs appears in every matching timeline. Within a
// timeline messages are sorted ascending by timestamp; ties keep their
// original transcript order.
func Build(msgs []chat.Message) []Timeline {
	byPID := make(map[string][]chat.Message)
	var order []string

	for _, msg := range msgs {
		for _, pid := range chat.ExtractPIDs(msg.Body) {
			if _, ok := byPID[pid]; !ok {
				order = append(order, pid)
			}
			byPID[pid] = append(byPID[pid], msg)
		}
	}

	timelines := make([]Timeline, 0, len(order))
	for _, pid := range order {
		seq := byPID[pid]
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].Timestamp.Before(seq[j].Timestamp)
		})
		timelines = append(timelines, Timeline{PID: pid, Messages: seq})
	}
	return timelines
}
