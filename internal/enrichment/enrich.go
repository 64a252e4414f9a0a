// Package enrichment turns a scraped ProfileRecord into resume-ready content.
// Every model call has a fallback, so enrichment never loses scraped data.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-scraper/internal/experience"
	"github.com/jonathan/resume-scraper/internal/llm"
	"github.com/jonathan/resume-scraper/internal/prompts"
	"github.com/jonathan/resume-scraper/internal/types"
)

// DefaultConcurrency bounds the number of model calls in flight
const DefaultConcurrency = 4

// Enricher produces EnrichedRecords using a text-transformer client
type Enricher struct {
	client      llm.Client
	logger      *slog.Logger
	concurrency int
	tier        llm.ModelTier
	now         func() time.Time
}

// Option configures an Enricher
type Option func(*Enricher)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// WithConcurrency sets the number of concurrent model calls
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTier selects the model tier used for bullets
func WithTier(tier llm.ModelTier) Option {
	return func(e *Enricher) {
		e.tier = tier
	}
}

// WithClock overrides the clock used for GeneratedAt
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) {
		e.now = now
	}
}

// New creates an Enricher
func New(client llm.Client, opts ...Option) *Enricher {
	e := &Enricher{
		client:      client,
		logger:      slog.Default(),
		concurrency: DefaultConcurrency,
		tier:        llm.TierStandard,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "enrichment")
	return e
}

// Enrich builds a new EnrichedRecord from record. The input is never modified.
// Model failures fall back to the scraped text; only cancellation is returned as an error.
func (e *Enricher) Enrich(ctx context.Context, record *types.ProfileRecord) (*types.EnrichedRecord, error) {
	if record == nil {
		return nil, errors.New("enrichment: nil profile record")
	}

	out := &types.EnrichedRecord{
		Source:          *record,
		Name:            displayName(record),
		Positions:       []types.EnrichedPosition{},
		Schools:         []types.School{},
		Projects:        []types.EnrichedProject{},
		SkillCategories: map[string][]string{},
	}

	if record.LinkedIn.IsOK() {
		li := record.LinkedIn.Profile
		out.Headline = li.Headline
		for _, pos := range positionsOf(li) {
			out.Positions = append(out.Positions, types.EnrichedPosition{Position: pos, Bullets: []string{}})
		}
		out.Schools = append(out.Schools, schoolsOf(li)...)
	}
	if record.GitHub.IsOK() {
		for _, proj := range record.GitHub.Profile.Projects {
			out.Projects = append(out.Projects, types.EnrichedProject{Project: proj, Bullets: []string{}})
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range out.Positions {
		pos := &out.Positions[i]
		if pos.Description == "" {
			continue
		}
		g.Go(func() error {
			pos.Bullets = e.positionBullets(gCtx, pos.Position)
			return nil
		})
	}

	for i := range out.Projects {
		proj := &out.Projects[i]
		if proj.Description == nil || strings.TrimSpace(*proj.Description) == "" {
			continue
		}
		g.Go(func() error {
			proj.Bullets = e.projectBullets(gCtx, proj.Project)
			return nil
		})
	}

	var categories map[string][]string
	g.Go(func() error {
		categories = e.categorize(gCtx, record.FinalSkills)
		return nil
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}

	out.SkillCategories = categories
	out.GeneratedAt = types.FormatTimestamp(e.now())
	return out, nil
}

func (e *Enricher) positionBullets(ctx context.Context, pos types.Position) []string {
	prompt, err := prompts.Render(prompts.PositionBullets, map[string]string{
		"Title":       pos.Title,
		"Company":     pos.Company,
		"Description": pos.Description,
	})
	if err != nil {
		e.logger.Error("position prompt unavailable", "error", err)
		return []string{pos.Description}
	}
	return e.bullets(ctx, prompt, pos.Description, "position", pos.Title)
}

func (e *Enricher) projectBullets(ctx context.Context, proj types.Project) []string {
	prompt, err := prompts.Render(prompts.ProjectBullets, map[string]string{
		"Name":        proj.Name,
		"Description": *proj.Description,
	})
	if err != nil {
		e.logger.Error("project prompt unavailable", "error", err)
		return []string{*proj.Description}
	}
	return e.bullets(ctx, prompt, *proj.Description, "project", proj.Name)
}

func (e *Enricher) bullets(ctx context.Context, prompt, fallback, kind, label string) []string {
	text, err := e.client.GenerateContent(ctx, prompt, e.tier)
	if err != nil {
		e.logger.Warn("bullet generation failed, keeping description", "kind", kind, "name", label, "error", err)
		return []string{fallback}
	}
	bullets := llm.ParseBullets(text)
	if len(bullets) == 0 {
		e.logger.Warn("model returned no bullets, keeping description", "kind", kind, "name", label)
		return []string{fallback}
	}
	return bullets
}

// categorize groups skills into the fixed categories; on failure the flat list is kept under "Skills"
func (e *Enricher) categorize(ctx context.Context, skills []string) map[string][]string {
	if len(skills) == 0 {
		return map[string][]string{}
	}
	fallback := map[string][]string{types.CategoryUncategorized: append([]string(nil), skills...)}

	categoryLines := make([]string, 0, len(types.SkillCategories()))
	for _, c := range types.SkillCategories() {
		categoryLines = append(categoryLines, "- "+c)
	}
	prompt, err := prompts.Render(prompts.SkillCategories, map[string]string{
		"Categories": strings.Join(categoryLines, "\n"),
		"Skills":     strings.Join(skills, ", "),
	})
	if err != nil {
		e.logger.Error("skill prompt unavailable", "error", err)
		return fallback
	}

	raw, err := llm.GenerateInto[map[string][]string](ctx, e.client, prompt, llm.TierLite)
	if err != nil {
		e.logger.Warn("skill categorization failed, keeping flat list", "error", err)
		return fallback
	}

	categorized := make(map[string][]string, len(raw))
	for _, category := range types.SkillCategories() {
		var kept []string
		for _, skill := range raw[category] {
			if skill = strings.TrimSpace(skill); skill != "" {
				kept = append(kept, skill)
			}
		}
		if len(kept) > 0 {
			categorized[category] = kept
		}
	}
	if len(categorized) == 0 {
		e.logger.Warn("skill categorization returned no known categories, keeping flat list")
		return fallback
	}
	return categorized
}

func positionsOf(profile *types.LinkedInProfile) []types.Position {
	if len(profile.Positions) > 0 {
		return profile.Positions
	}
	positions := make([]types.Position, 0, len(profile.Experience))
	for _, raw := range experience.NormalizeEntries(profile.Experience) {
		positions = append(positions, experience.ParsePosition(raw))
	}
	return positions
}

func schoolsOf(profile *types.LinkedInProfile) []types.School {
	if len(profile.Schools) > 0 {
		return profile.Schools
	}
	schools := make([]types.School, 0, len(profile.Education))
	for _, raw := range experience.NormalizeEntries(profile.Education) {
		schools = append(schools, experience.ParseSchool(raw))
	}
	return schools
}

// displayName prefers the LinkedIn name and falls back to the GitHub one
func displayName(record *types.ProfileRecord) string {
	if record.LinkedIn.IsOK() {
		if name := record.LinkedIn.Profile.Name; name != "" && name != types.UnknownName {
			return name
		}
	}
	if record.GitHub.IsOK() && record.GitHub.Profile.Name != "" {
		return record.GitHub.Profile.Name
	}
	return ""
}
