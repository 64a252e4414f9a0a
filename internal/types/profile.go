// Package types provides type definitions for structured data used throughout the resume-scraper system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the layout used for ProfileRecord.Timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// UnknownName is the profile name recorded when no name could be extracted
const UnknownName = "Unknown"

// ProfileRecord is the handoff artifact produced by one scrape invocation
type ProfileRecord struct {
	GitHub      SourceResult[GitHubProfile]   `json:"github"`
	LinkedIn    SourceResult[LinkedInProfile] `json:"linkedin"`
	FinalSkills []string                      `json:"final_skills"`
	Timestamp   string                        `json:"timestamp"`
}

// FormatTimestamp renders t in the record timestamp layout
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// GitHubProfile is the Ok variant of the structured source
type GitHubProfile struct {
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	PublicRepos int       `json:"public_repos"`
	Projects    []Project `json:"projects"`
	Skills      []string  `json:"skills"`
}

// Project is a single non-fork repository
type Project struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Stars       int     `json:"stars"`
	Language    *string `json:"language"`
	CreatedAt   string  `json:"created_at"`
	PushedAt    string  `json:"pushed_at"`
}

// LinkedInProfile is the Ok variant of the session-driven source
type LinkedInProfile struct {
	Name       string     `json:"name"`
	Headline   string     `json:"headline"`
	Experience []RawEntry `json:"experience"`
	Education  []RawEntry `json:"education"`
	Skills     []string   `json:"skills"`

	// Typed views of Experience and Education, filled by the normalizer
	Positions []Position `json:"positions,omitempty"`
	Schools   []School   `json:"schools,omitempty"`
}

// SourceResult is either a profile (Ok) or an error message (Err).
// An Err result means "field absent" to downstream consumers.
type SourceResult[T any] struct {
	Profile *T
	Err     string
}

// Ok wraps a successfully scraped profile
func Ok[T any](profile T) SourceResult[T] {
	return SourceResult[T]{Profile: &profile}
}

// Fail builds an Err result from a message
func Fail[T any](format string, args ...any) SourceResult[T] {
	return SourceResult[T]{Err: fmt.Sprintf(format, args...)}
}

// IsOK reports whether the result carries a profile
func (r SourceResult[T]) IsOK() bool {
	return r.Err == "" && r.Profile != nil
}

// MarshalJSON encodes Err as {"error": msg} and Ok as the profile object itself
func (r SourceResult[T]) MarshalJSON() ([]byte, error) {
	if !r.IsOK() {
		msg := r.Err
		if msg == "" {
			msg = "no data"
		}
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: msg})
	}
	return json.Marshal(r.Profile)
}

// UnmarshalJSON decodes either variant
func (r *SourceResult[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = SourceResult[T]{}
		return nil
	}

	var envelope struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode source result: %w", err)
	}
	if envelope.Error != nil {
		*r = SourceResult[T]{Err: *envelope.Error}
		return nil
	}

	var profile T
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("failed to decode source profile: %w", err)
	}
	*r = SourceResult[T]{Profile: &profile}
	return nil
}

func (r SourceResult[T]) skillsOf(get func(*T) []string) []string {
	if !r.IsOK() {
		return nil
	}
	return get(r.Profile)
}

// GitHubSkills returns the structured source skills, nil when absent
func (p *ProfileRecord) GitHubSkills() []string {
	return p.GitHub.skillsOf(func(g *GitHubProfile) []string { return g.Skills })
}

// LinkedInSkills returns the session-driven source skills, nil when absent
func (p *ProfileRecord) LinkedInSkills() []string {
	return p.LinkedIn.skillsOf(func(l *LinkedInProfile) []string { return l.Skills })
}
