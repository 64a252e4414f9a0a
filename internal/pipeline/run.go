// Package pipeline provides the high-level orchestration of one scrape invocation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-scraper/internal/db"
	"github.com/jonathan/resume-scraper/internal/experience"
	"github.com/jonathan/resume-scraper/internal/observability"
	"github.com/jonathan/resume-scraper/internal/schemas"
	"github.com/jonathan/resume-scraper/internal/skills"
	"github.com/jonathan/resume-scraper/internal/types"
)

// GitHubSource produces the structured-source half of a record
type GitHubSource interface {
	Scrape(ctx context.Context, username string) types.SourceResult[types.GitHubProfile]
}

// LinkedInSource produces the session-driven half of a record
type LinkedInSource interface {
	Scrape(ctx context.Context, profileURL string) types.SourceResult[types.LinkedInProfile]
}

// Store persists runs and their artifacts. *db.DB implements it.
type Store interface {
	CreateRun(ctx context.Context, githubUser, linkedinURL string) (uuid.UUID, error)
	SaveArtifact(ctx context.Context, runID uuid.UUID, step string, content any) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. Run serializes
// calls, so a callback never runs concurrently with itself.
type ProgressCallback func(event ProgressEvent)

// Step names reported through ProgressCallback
const (
	StepGitHub   = "github"
	StepLinkedIn = "linkedin"
	StepMerge    = "merge"
	StepWrite    = "write"
	StepStore    = "store"
)

// Options holds configuration for one run
type Options struct {
	GitHub   GitHubSource
	LinkedIn LinkedInSource

	Username   string
	ProfileURL string
	OutputPath string // empty skips writing the artifact

	// Sequential runs the sources one after another instead of concurrently
	Sequential bool
	// ValidateOutput checks the written artifact against the bundled schema
	ValidateOutput bool

	Store      Store                  // optional
	Printer    *observability.Printer // optional, verbose summaries
	OnProgress ProgressCallback       // optional
	Logger     *slog.Logger
	Now        func() time.Time
}

func (o *Options) emit(step, message string, runID uuid.UUID) {
	if o.OnProgress == nil {
		return
	}
	event := ProgressEvent{Step: step, Message: message}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	o.OnProgress(event)
}

// Run scrapes both sources, merges their skills and persists the record.
// Source failures are recorded in the record; only output and setup failures return an error.
func Run(ctx context.Context, opts Options) (*types.ProfileRecord, error) {
	if opts.GitHub == nil || opts.LinkedIn == nil {
		return nil, fmt.Errorf("pipeline: both sources are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pipeline")
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if callback := opts.OnProgress; callback != nil {
		var mu sync.Mutex
		opts.OnProgress = func(event ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			callback(event)
		}
	}

	runID := startRun(ctx, &opts, logger)

	githubResult, linkedinResult := scrapeSources(ctx, &opts, logger, runID)

	if linkedinResult.IsOK() {
		experience.Normalize(linkedinResult.Profile)
	}

	record := &types.ProfileRecord{
		GitHub:    githubResult,
		LinkedIn:  linkedinResult,
		Timestamp: types.FormatTimestamp(now()),
	}
	record.FinalSkills = skills.Merge(record.GitHubSkills(), record.LinkedInSkills())
	logger.Info("skills merged", "count", len(record.FinalSkills))
	opts.emit(StepMerge, fmt.Sprintf("Merged %d skills", len(record.FinalSkills)), runID)

	if opts.Printer != nil {
		opts.Printer.PrintProfileRecord(record)
	}

	if opts.OutputPath != "" {
		if err := experience.WriteJSON(opts.OutputPath, record); err != nil {
			finishRun(ctx, &opts, logger, runID, db.StatusFailed)
			return record, fmt.Errorf("failed to write profile record: %w", err)
		}
		logger.Info("profile record written", "path", opts.OutputPath)
		opts.emit(StepWrite, "Saved "+opts.OutputPath, runID)

		if opts.ValidateOutput {
			if err := schemas.ValidateProfileRecordFile(opts.OutputPath); err != nil {
				logger.Error("profile record does not match schema", "path", opts.OutputPath, "error", err)
			}
		}
	}

	if opts.Store != nil && runID != uuid.Nil {
		if err := opts.Store.SaveArtifact(ctx, runID, db.StepProfileRecord, record); err != nil {
			logger.Warn("failed to store profile record", "run_id", runID, "error", err)
		} else {
			opts.emit(StepStore, "Stored profile record", runID)
		}
	}
	finishRun(ctx, &opts, logger, runID, runStatus(record))

	return record, nil
}

// scrapeSources runs both sources. Neither returns an error into the group:
// failures are carried as Err results.
func scrapeSources(ctx context.Context, opts *Options, logger *slog.Logger, runID uuid.UUID) (
	types.SourceResult[types.GitHubProfile], types.SourceResult[types.LinkedInProfile],
) {
	var (
		githubResult   types.SourceResult[types.GitHubProfile]
		linkedinResult types.SourceResult[types.LinkedInProfile]
	)

	scrapeGitHub := func() {
		logger.Info("scraping GitHub", "username", opts.Username)
		githubResult = opts.GitHub.Scrape(ctx, opts.Username)
		reportSource(opts, logger, StepGitHub, githubResult.Err, runID)
	}
	scrapeLinkedIn := func() {
		logger.Info("scraping LinkedIn", "url", opts.ProfileURL)
		linkedinResult = opts.LinkedIn.Scrape(ctx, opts.ProfileURL)
		reportSource(opts, logger, StepLinkedIn, linkedinResult.Err, runID)
	}

	if opts.Sequential {
		scrapeGitHub()
		scrapeLinkedIn()
		return githubResult, linkedinResult
	}

	var g errgroup.Group
	g.Go(func() error {
		scrapeGitHub()
		return nil
	})
	g.Go(func() error {
		scrapeLinkedIn()
		return nil
	})
	_ = g.Wait()

	return githubResult, linkedinResult
}

func reportSource(opts *Options, logger *slog.Logger, step, errMsg string, runID uuid.UUID) {
	if errMsg != "" {
		logger.Warn("source failed", "source", step, "error", errMsg)
		opts.emit(step, "Failed: "+errMsg, runID)
		return
	}
	logger.Info("source scraped", "source", step)
	opts.emit(step, "Scraped "+step+" profile", runID)
}

func startRun(ctx context.Context, opts *Options, logger *slog.Logger) uuid.UUID {
	if opts.Store == nil {
		return uuid.Nil
	}
	runID, err := opts.Store.CreateRun(ctx, opts.Username, opts.ProfileURL)
	if err != nil {
		logger.Warn("failed to create run, continuing without database persistence", "error", err)
		return uuid.Nil
	}
	logger.Info("run created", "run_id", runID)
	return runID
}

func finishRun(ctx context.Context, opts *Options, logger *slog.Logger, runID uuid.UUID, status string) {
	if opts.Store == nil || runID == uuid.Nil {
		return
	}
	if err := opts.Store.CompleteRun(ctx, runID, status); err != nil {
		logger.Warn("failed to complete run", "run_id", runID, "error", err)
	}
}

// runStatus summarizes how many sources succeeded
func runStatus(record *types.ProfileRecord) string {
	switch ok := btoi(record.GitHub.IsOK()) + btoi(record.LinkedIn.IsOK()); ok {
	case 2:
		return db.StatusCompleted
	case 1:
		return db.StatusPartial
	default:
		return db.StatusFailed
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
