// Package skills merges and filters skill names collected from the profile sources.
package skills

import (
	"sort"
	"strings"
)

// Key returns the case-folded deduplication key for a skill
func Key(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// Merge combines two skill sets into one sorted list with no two entries differing only by case.
// On a case-insensitive collision the first-seen casing wins, iterating a before b.
func Merge(a, b []string) []string {
	canonical := make(map[string]string, len(a)+len(b))

	add := func(list []string) {
		for _, skill := range list {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			key := Key(skill)
			if _, exists := canonical[key]; !exists {
				canonical[key] = skill
			}
		}
	}
	add(a)
	add(b)

	merged := make([]string, 0, len(canonical))
	for _, skill := range canonical {
		merged = append(merged, skill)
	}
	sort.Strings(merged)
	return merged
}

// Dedupe is Merge over a single list
func Dedupe(list []string) []string {
	return Merge(list, nil)
}
