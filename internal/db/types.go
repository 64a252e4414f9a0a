package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a scrape run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	GitHubUser  string     `json:"github_user"`
	LinkedInURL string     `json:"linkedin_url"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// ValidStatus reports whether status is a known run status
func ValidStatus(status string) bool {
	switch status {
	case StatusRunning, StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// ArtifactStep constants for known artifact types
const (
	StepProfileRecord  = "profile_record"
	StepEnrichedRecord = "enriched_record"
)

// DefaultListLimit caps ListRuns when no limit is given
const DefaultListLimit = 50
