package chat

import "regexp"

// pidPattern matches an exactly-6-digit token, optionally preceded by a
// "PID" label with a colon/dash separator. Word boundaries on both sides of
// the digit run keep a 7+ digit numeral from yielding a spurious 6-digit hit.
var pidPattern = regexp.MustCompile(`(?i)\b(?:pid[\s:\-]*)?(\d{6})\b`)

// ExtractPIDs returns the distinct 6-digit product IDs mentioned in a message
// body, in first-seen order.
func ExtractPIDs(body string) []string {
	matches := pidPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var pids []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			pids = append(pids, m[1])
		}
	}
	return pids
}
