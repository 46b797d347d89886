package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IST is the fixed +05:30 offset every transcript timestamp is anchored to,
// regardless of the server's locale.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Message is a single parsed transcript line.
type Message struct {
	Timestamp time.Time
	Sender    string
	Body      string
}

// Two export formats show up in the wild. Both carry D/M/Y dates with 1-2
// digit day/month, 2 or 4 digit years, and an optional am/pm marker.
//
//	[17/10/2024, 9:40 PM] Priya: Any update?
//	17/10/2024, 9:40 pm - Priya: Any update?
//
// Capture groups are identical across the two: day, month, year, hour,
// minute, am/pm, sender, body.
var (
	bracketLine = regexp.MustCompile(`^\[(\d{1,2})/(\d{1,2})/(\d{2,4}),\s*(\d{1,2}):(\d{2})\s*((?i:am|pm))?\]\s*([^:]+):\s?(.*)$`)
	dashedLine  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4}),\s*(\d{1,2}):(\d{2})\s*((?i:am|pm))?\s*-\s*([^:]+):\s?(.*)$`)
)

// Parse converts a raw transcript block into messages, keeping only those
// strictly later than the cutoff instant. Lines that match neither format
// (system notices, multi-line continuations) are skipped.
func Parse(text string, cutoff time.Time) []Message {
	var msgs []Message
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		m := bracketLine.FindStringSubmatch(line)
		if m == nil {
			m = dashedLine.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		msg, ok := buildMessage(m)
		if !ok {
			continue
		}
		if msg.Timestamp.After(cutoff) {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// ParseCutoff interprets a YYYY-MM-DD calendar date as midnight at the start
// of that day in the fixed +05:30 zone.
func ParseCutoff(date string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(date), IST)
}

func buildMessage(m []string) (Message, bool) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	marker := strings.ToLower(m[6])

	if len(m[3]) == 2 {
		year += 2000
	}

	switch marker {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return Message{}, false
	}

	return Message{
		Timestamp: time.Date(year, time.Month(month), day, hour, minute, 0, 0, IST),
		Sender:    strings.TrimSpace(m[7]),
		Body:      m[8],
	}, true
}
