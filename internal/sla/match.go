package sla

import (
	"math"
	"strings"
	"unicode"
)

// normalizeName lowercases, replaces non-alphanumeric runes with spaces, and
// collapses runs of whitespace, so "Ravi  Kumar." and "ravi kumar" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// matchesName reports whether a sender display name plausibly refers to the
// mapped merchandiser. Either normalized string containing the other is a
// match; otherwise at least threshold of the merchandiser's name tokens
// (rounded up, minimum 1) must appear as substrings of the sender.
func matchesName(sender, merch string, threshold float64) bool {
	ns := normalizeName(sender)
	nm := normalizeName(merch)
	if ns == "" || nm == "" {
		return false
	}
	if strings.Contains(ns, nm) || strings.Contains(nm, ns) {
		return true
	}

	tokens := strings.Fields(nm)
	need := int(math.Ceil(threshold * float64(len(tokens))))
	if need < 1 {
		need = 1
	}
	found := 0
	for _, tok := range tokens {
		if strings.Contains(ns, tok) {
			found++
		}
	}
	return found >= need
}

// isQueryLike reports whether a message body reads like a question or a
// status chase: any configured cue substring, or a trailing question mark.
func (r Rules) isQueryLike(body string) bool {
	t := strings.ToLower(strings.TrimSpace(body))
	if t == "" {
		return false
	}
	if strings.HasSuffix(t, "?") {
		return true
	}
	for _, cue := range r.QueryCues {
		if strings.Contains(t, strings.ToLower(cue)) {
			return true
		}
	}
	return false
}
