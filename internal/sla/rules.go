package sla

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the tunable heuristics behind the intent classifier. They are
// data, not code: ops can override the compiled-in defaults with a YAML file
// without touching the classification algorithm.
type Rules struct {
	// QueryCues are case-insensitive substrings that mark a message as
	// asking a question or chasing a status update.
	QueryCues []string `yaml:"query_cues"`
	// FuzzyThreshold is the fraction of merchandiser name tokens that must
	// appear in a sender string for a fuzzy match (rounded up, minimum 1).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// DefaultRules returns the compiled-in heuristics.
func DefaultRules() Rules {
	return Rules{
		QueryCues: []string{
			"?",
			"any update",
			"please update",
			"please confirm",
			"status",
			"lead time",
			"dispatch",
			"delivery date",
			"when will",
			"follow up",
			"following up",
			"reminder",
			"pending",
			"awaiting",
		},
		FuzzyThreshold: 0.6,
	}
}

// LoadRules reads a YAML rules file. Fields left empty fall back to the
// defaults, so a file may override just the cue list or just the threshold.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultRules(), fmt.Errorf("read rules: %w", err)
	}
	rules := Rules{}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return DefaultRules(), fmt.Errorf("parse rules: %w", err)
	}
	defaults := DefaultRules()
	if len(rules.QueryCues) == 0 {
		rules.QueryCues = defaults.QueryCues
	}
	if rules.FuzzyThreshold <= 0 || rules.FuzzyThreshold > 1 {
		rules.FuzzyThreshold = defaults.FuzzyThreshold
	}
	return rules, nil
}
