package types

import "strings"

// EntrySeparator joins the text fragments of a RawEntry
const EntrySeparator = " | "

// RawEntry is one experience or education item flattened into a delimited string.
// Field positions are significant; missing trailing fields are absent, not malformed.
type RawEntry string

// Fields splits the entry into its positional segments
func (e RawEntry) Fields() []string {
	if e == "" {
		return nil
	}
	return strings.Split(string(e), EntrySeparator)
}

// Field returns segment i, or "" when the entry has fewer segments
func (e RawEntry) Field(i int) string {
	fields := e.Fields()
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// Rest joins segments from i onwards with a single space
func (e RawEntry) Rest(i int) string {
	fields := e.Fields()
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(strings.Join(fields[i:], " "))
}

// JoinEntry builds a RawEntry from text fragments
func JoinEntry(fragments []string) RawEntry {
	return RawEntry(strings.Join(fragments, EntrySeparator))
}

// Position is the typed view of an experience RawEntry
type Position struct {
	Title       string `json:"title"`
	Company     string `json:"company,omitempty"`
	DateRange   string `json:"date_range,omitempty"`
	Description string `json:"description,omitempty"`
}

// School is the typed view of an education RawEntry
type School struct {
	Name      string `json:"name"`
	Degree    string `json:"degree,omitempty"`
	DateRange string `json:"date_range,omitempty"`
}
