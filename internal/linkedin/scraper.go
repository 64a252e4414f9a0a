// Package linkedin scrapes a professional-network profile through an authenticated browser session.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/types"
)

// DefaultLoginURL is the login surface of the session-driven source
const DefaultLoginURL = "https://www.linkedin.com/login"

// SkillsPath is appended to a profile URL to reach the skills sub-page
const SkillsPath = "/details/skills/"

// Login form selectors
const (
	usernameSelector = "#username"
	passwordSelector = "#password"
	submitSelector   = `button[type="submit"]`
)

// skillsScrollPasses is how many scroll-to-bottom cycles the skills sub-page gets
const skillsScrollPasses = 2

var (
	// ErrCredentialsMissing is returned when no username/password pair is configured
	ErrCredentialsMissing = errors.New("LinkedIn credentials (LINKEDIN_EMAIL, LINKEDIN_PASSWORD) missing")
	// ErrLoginFailed is returned in strict mode when the session never leaves the login page
	ErrLoginFailed = errors.New("login failed")
)

// Credentials is the session-source username/password pair
type Credentials struct {
	Email    string
	Password string
}

// Valid reports whether both halves are present
func (c Credentials) Valid() bool {
	return c.Email != "" && c.Password != ""
}

// Timing holds every wait the scraper performs
type Timing struct {
	// ElementWait bounds waits for a DOM element to appear
	ElementWait time.Duration
	// Login bounds the wait for the session to leave the login page
	Login time.Duration
	// LoginPoll is the interval between location checks after submitting
	LoginPoll time.Duration
	// Settle is the pause after a navigation before reading the page
	Settle time.Duration
	// ScrollPause is the pause after each profile page scroll
	ScrollPause time.Duration
	// SkillsScrollPause is the pause after each skills page scroll
	SkillsScrollPause time.Duration
}

// DefaultTiming returns the waits used against the live site
func DefaultTiming() Timing {
	return Timing{
		ElementWait:       10 * time.Second,
		Login:             15 * time.Second,
		LoginPoll:         500 * time.Millisecond,
		Settle:            5 * time.Second,
		ScrollPause:       2 * time.Second,
		SkillsScrollPause: 1 * time.Second,
	}
}

// Scraper is the session-driven profile source
type Scraper struct {
	launcher    fetch.Launcher
	credentials Credentials
	timing      Timing
	loginURL    string
	strictLogin bool
	logger      *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTiming overrides the default waits
func WithTiming(timing Timing) Option {
	return func(s *Scraper) { s.timing = timing }
}

// WithLoginURL overrides the login page
func WithLoginURL(loginURL string) Option {
	return func(s *Scraper) { s.loginURL = loginURL }
}

// WithStrictLogin makes an unconfirmed login a hard failure
func WithStrictLogin(strict bool) Option {
	return func(s *Scraper) { s.strictLogin = strict }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scraper that opens sessions with launcher
func New(launcher fetch.Launcher, credentials Credentials, opts ...Option) *Scraper {
	s := &Scraper{
		launcher:    launcher,
		credentials: credentials,
		timing:      DefaultTiming(),
		loginURL:    DefaultLoginURL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "linkedin")
	return s
}

// SkillsURL returns the skills sub-page for a profile URL
func SkillsURL(profileURL string) string {
	return strings.TrimRight(profileURL, "/") + SkillsPath
}

// Scrape logs in, loads the profile and extracts it.
// It never returns a Go error: every failure becomes an Err result.
func (s *Scraper) Scrape(ctx context.Context, profileURL string) (result types.SourceResult[types.LinkedInProfile]) {
	if !s.credentials.Valid() {
		s.logger.Warn("skipping LinkedIn scrape", "reason", ErrCredentialsMissing)
		return types.Fail[types.LinkedInProfile]("%s", ErrCredentialsMissing.Error())
	}

	s.logger.Info("scraping LinkedIn profile", "url", profileURL)

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return types.Fail[types.LinkedInProfile]("LinkedIn scraping failed: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Debug("browser close returned error", "error", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			result = types.Fail[types.LinkedInProfile]("LinkedIn scraping failed: %v", r)
		}
	}()

	profile, err := s.scrape(ctx, session, profileURL)
	if err != nil {
		s.logger.Error("LinkedIn scrape failed", "error", err)
		return types.Fail[types.LinkedInProfile]("LinkedIn scraping failed: %v", err)
	}

	s.logger.Info("LinkedIn profile scraped",
		"experience", len(profile.Experience),
		"education", len(profile.Education),
		"skills", len(profile.Skills))
	return types.Ok(*profile)
}

func (s *Scraper) scrape(ctx context.Context, session fetch.Session, profileURL string) (*types.LinkedInProfile, error) {
	if err := s.login(ctx, session); err != nil {
		return nil, err
	}

	if err := s.loadProfile(ctx, session, profileURL); err != nil {
		return nil, err
	}

	markup, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := fetch.ParseHTML(markup)
	if err != nil {
		return nil, err
	}

	profile := ExtractProfile(doc)
	profile.Skills = s.scrapeSkills(ctx, session, profileURL, profile.Name)
	return &profile, nil
}

func (s *Scraper) login(ctx context.Context, session fetch.Session) error {
	if err := session.Navigate(ctx, s.loginURL); err != nil {
		return err
	}
	if err := session.WaitReady(ctx, usernameSelector, s.timing.ElementWait); err != nil {
		return err
	}
	if err := session.SendKeys(ctx, usernameSelector, s.credentials.Email); err != nil {
		return err
	}
	if err := session.SendKeys(ctx, passwordSelector, s.credentials.Password); err != nil {
		return err
	}
	if err := session.Click(ctx, submitSelector); err != nil {
		return err
	}
	return s.awaitLogin(ctx, session)
}

// awaitLogin polls the tab location until it leaves the login flow or the login timeout expires
func (s *Scraper) awaitLogin(ctx context.Context, session fetch.Session) error {
	deadline := time.Now().Add(s.timing.Login)
	for {
		location, err := session.Location(ctx)
		if err == nil && !isLoginPage(location) {
			s.logger.Debug("login confirmed", "location", location)
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		if err := pause(ctx, s.timing.LoginPoll); err != nil {
			return err
		}
	}

	if s.strictLogin {
		return ErrLoginFailed
	}
	s.logger.Warn("login not confirmed, continuing", "timeout", s.timing.Login)
	return nil
}

// loadProfile opens the profile and scrolls in two stages to trigger lazy sections
func (s *Scraper) loadProfile(ctx context.Context, session fetch.Session, profileURL string) error {
	if err := session.Navigate(ctx, profileURL); err != nil {
		return err
	}
	if err := session.WaitReady(ctx, "body", s.timing.ElementWait); err != nil {
		return err
	}
	if err := pause(ctx, s.timing.Settle); err != nil {
		return err
	}

	for _, depth := range []float64{0.5, 1.0} {
		if err := session.ScrollTo(ctx, depth); err != nil {
			return err
		}
		if err := pause(ctx, s.timing.ScrollPause); err != nil {
			return err
		}
	}
	return nil
}

// scrapeSkills visits the skills sub-page. Failures yield no skills rather than an error.
func (s *Scraper) scrapeSkills(ctx context.Context, session fetch.Session, profileURL, name string) (found []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("skills page failed", "error", fmt.Sprint(r))
			found = []string{}
		}
	}()

	found, err := s.collectSkills(ctx, session, profileURL, name)
	if err != nil {
		s.logger.Warn("skills page failed", "error", err)
		return []string{}
	}
	return found
}

func (s *Scraper) collectSkills(ctx context.Context, session fetch.Session, profileURL, name string) ([]string, error) {
	skillsURL := SkillsURL(profileURL)
	s.logger.Debug("extracting skills", "url", skillsURL)

	if err := session.Navigate(ctx, skillsURL); err != nil {
		return nil, err
	}
	if err := pause(ctx, s.timing.Settle); err != nil {
		return nil, err
	}
	for i := 0; i < skillsScrollPasses; i++ {
		if err := session.ScrollTo(ctx, 1.0); err != nil {
			return nil, err
		}
		if err := pause(ctx, s.timing.SkillsScrollPause); err != nil {
			return nil, err
		}
	}

	markup, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := fetch.ParseHTML(markup)
	if err != nil {
		return nil, err
	}
	return ExtractSkills(doc, name), nil
}

// isLoginPage reports whether location is still inside the login or challenge flow
func isLoginPage(location string) bool {
	parsed, err := url.Parse(location)
	if err != nil || location == "" {
		return true
	}
	path := strings.ToLower(parsed.Path)
	return strings.Contains(path, "/login") ||
		strings.Contains(path, "/checkpoint") ||
		strings.Contains(path, "/uas/")
}

// pause waits for d or until ctx is done
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
