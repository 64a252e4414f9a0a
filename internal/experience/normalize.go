package experience

import (
	"strings"

	"github.com/jonathan/resume-scraper/internal/types"
)

// Segment positions inside a scraped experience entry
const (
	positionTitleField       = 0
	positionCompanyField     = 1
	positionDateField        = 4
	positionDescriptionStart = 5
)

// Segment positions inside a scraped education entry
const (
	schoolNameField   = 0
	schoolDegreeField = 2
	schoolDateField   = 4
)

// ParsePosition converts an experience entry into its typed view.
// Missing trailing segments become empty strings.
func ParsePosition(raw types.RawEntry) types.Position {
	return types.Position{
		Title:       raw.Field(positionTitleField),
		Company:     raw.Field(positionCompanyField),
		DateRange:   raw.Field(positionDateField),
		Description: raw.Rest(positionDescriptionStart),
	}
}

// ParseSchool converts an education entry into its typed view
func ParseSchool(raw types.RawEntry) types.School {
	return types.School{
		Name:      raw.Field(schoolNameField),
		Degree:    raw.Field(schoolDegreeField),
		DateRange: raw.Field(schoolDateField),
	}
}

// NormalizeEntries trims entries and drops empty ones and exact duplicates, keeping order
func NormalizeEntries(entries []types.RawEntry) []types.RawEntry {
	normalized := make([]types.RawEntry, 0, len(entries))
	seen := make(map[types.RawEntry]struct{})

	for _, entry := range entries {
		entry = types.RawEntry(strings.TrimSpace(string(entry)))
		if entry == "" {
			continue
		}
		if _, exists := seen[entry]; exists {
			continue
		}
		seen[entry] = struct{}{}
		normalized = append(normalized, entry)
	}

	return normalized
}

// Normalize cleans the raw entry lists of a profile and fills its typed views
func Normalize(profile *types.LinkedInProfile) {
	if profile == nil {
		return
	}

	profile.Experience = NormalizeEntries(profile.Experience)
	profile.Education = NormalizeEntries(profile.Education)

	profile.Positions = make([]types.Position, 0, len(profile.Experience))
	for _, raw := range profile.Experience {
		profile.Positions = append(profile.Positions, ParsePosition(raw))
	}

	profile.Schools = make([]types.School, 0, len(profile.Education))
	for _, raw := range profile.Education {
		profile.Schools = append(profile.Schools, ParseSchool(raw))
	}
}
