package skills

import (
	"strings"
	"unicode/utf8"
)

// MaxCandidateLength is the exclusive rune limit for a scraped skill candidate
const MaxCandidateLength = 50

// noiseSubstrings are lower-case fragments that mark a candidate as page chrome
var noiseSubstrings = []string{
	"(he/him)",
	"(she/her)",
	"(they/them)",
	"profile",
	"linkedin",
	"skill",
	"unknown",
}

// IsNoise reports whether a candidate contains a known noise fragment
func IsNoise(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, noise := range noiseSubstrings {
		if strings.Contains(lower, noise) {
			return true
		}
	}
	return false
}

// MatchesName reports whether candidate is a substring or superstring of name, ignoring case.
// An empty name matches nothing.
func MatchesName(candidate, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	lower := strings.ToLower(candidate)
	return strings.Contains(lower, name) || strings.Contains(name, lower)
}

// Accept applies the candidate rules to a single trimmed string
func Accept(candidate, name string) bool {
	if candidate == "" || utf8.RuneCountInString(candidate) >= MaxCandidateLength {
		return false
	}
	return !IsNoise(candidate) && !MatchesName(candidate, name)
}

// FilterCandidates trims candidates and keeps those that look like skills, preserving order.
// name is the profile owner's extracted name; candidates matching it are dropped.
func FilterCandidates(candidates []string, name string) []string {
	kept := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if Accept(c, name) {
			kept = append(kept, c)
		}
	}
	return kept
}
