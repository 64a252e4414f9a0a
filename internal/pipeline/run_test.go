package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-scraper/internal/db"
	"github.com/jonathan/resume-scraper/internal/experience"
	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/github"
	"github.com/jonathan/resume-scraper/internal/linkedin"
	"github.com/jonathan/resume-scraper/internal/types"
)

const profileURL = "https://www.linkedin.com/in/jane-doe/"

const profilePage = `<html><body>
<h1 class="text-heading-xlarge">Jane Doe</h1>
<div class="text-body-medium">Backend Engineer</div>
</body></html>`

const skillsPage = `<html><body>
<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">go</span></div>
<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">Rust</span></div>
</body></html>`

// pageSession serves canned markup keyed by the last navigated URL
type pageSession struct {
	mu          sync.Mutex
	pages       map[string]string
	current     string
	navigations []string
	closed      int
}

func (s *pageSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = url
	s.navigations = append(s.navigations, url)
	return nil
}

func (s *pageSession) WaitReady(context.Context, string, time.Duration) error { return nil }
func (s *pageSession) SendKeys(context.Context, string, string) error         { return nil }
func (s *pageSession) ScrollTo(context.Context, float64) error                { return nil }

func (s *pageSession) Click(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = "https://www.linkedin.com/feed/"
	return nil
}

func (s *pageSession) Location(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *pageSession) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.current], nil
}

func (s *pageSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func newGitHubServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/octocat":
			_, _ = w.Write([]byte(`{"name":"The Octocat","bio":"","location":"SF","public_repos":2}`))
		case "/users/octocat/repos":
			_, _ = w.Write([]byte(`[
				{"name":"api","html_url":"https://github.com/octocat/api","stargazers_count":5,"language":"Go","fork":false},
				{"name":"ml","html_url":"https://github.com/octocat/ml","stargazers_count":2,"language":"Python","fork":false}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func fastTiming() linkedin.Timing {
	return linkedin.Timing{ElementWait: time.Second, Login: time.Second, LoginPoll: time.Millisecond}
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestRun_EndToEnd(t *testing.T) {
	for _, sequential := range []bool{false, true} {
		t.Run(map[bool]string{false: "concurrent", true: "sequential"}[sequential], func(t *testing.T) {
			server := newGitHubServer(t)
			session := &pageSession{pages: map[string]string{
				profileURL:                     profilePage,
				linkedin.SkillsURL(profileURL): skillsPage,
			}}
			launcher := fetch.LauncherFunc(func(context.Context) (fetch.Session, error) { return session, nil })

			outPath := filepath.Join(t.TempDir(), "scraped_data.json")
			var events []ProgressEvent

			record, err := Run(context.Background(), Options{
				GitHub: github.New(github.WithBaseURL(server.URL)),
				LinkedIn: linkedin.New(launcher,
					linkedin.Credentials{Email: "jane@example.com", Password: "secret"},
					linkedin.WithTiming(fastTiming())),
				Username:       "octocat",
				ProfileURL:     profileURL,
				OutputPath:     outPath,
				Sequential:     sequential,
				ValidateOutput: true,
				Now:            fixedNow,
				OnProgress:     func(e ProgressEvent) { events = append(events, e) },
			})
			require.NoError(t, err)

			// GitHub is source A, so its "Go" casing wins over LinkedIn's "go"
			assert.Equal(t, []string{"Go", "Python", "Rust"}, record.FinalSkills)
			assert.Equal(t, "2024-03-01 12:00:00", record.Timestamp)
			require.True(t, record.LinkedIn.IsOK(), record.LinkedIn.Err)
			assert.Equal(t, "Jane Doe", record.LinkedIn.Profile.Name)
			assert.Empty(t, record.LinkedIn.Profile.Experience)
			assert.Equal(t, 1, session.closed)

			loaded, err := experience.LoadProfileRecord(outPath)
			require.NoError(t, err)
			if diff := cmp.Diff(record, loaded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("persisted record differs (-want +got):\n%s", diff)
			}

			raw, err := os.ReadFile(outPath)
			require.NoError(t, err)
			assert.Contains(t, string(raw), "\n    \"final_skills\"", "artifact is indented with 4 spaces")

			steps := map[string]bool{}
			for _, e := range events {
				steps[e.Step] = true
			}
			assert.True(t, steps[StepGitHub] && steps[StepLinkedIn] && steps[StepMerge] && steps[StepWrite])
		})
	}
}

func TestRun_ProgressCallbackIsSerialized(t *testing.T) {
	server := newGitHubServer(t)
	session := &pageSession{pages: map[string]string{
		profileURL:                     profilePage,
		linkedin.SkillsURL(profileURL): skillsPage,
	}}
	launcher := fetch.LauncherFunc(func(context.Context) (fetch.Session, error) { return session, nil })

	var active, overlaps atomic.Int32
	var events []ProgressEvent

	_, err := Run(context.Background(), Options{
		GitHub: github.New(github.WithBaseURL(server.URL)),
		LinkedIn: linkedin.New(launcher,
			linkedin.Credentials{Email: "jane@example.com", Password: "secret"},
			linkedin.WithTiming(fastTiming())),
		Username:   "octocat",
		ProfileURL: profileURL,
		OutputPath: filepath.Join(t.TempDir(), "scraped_data.json"),
		Now:        fixedNow,
		OnProgress: func(e ProgressEvent) {
			if active.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(5 * time.Millisecond)
			events = append(events, e)
			active.Add(-1)
		},
	})
	require.NoError(t, err)

	assert.Zero(t, overlaps.Load(), "progress callback ran concurrently with itself")

	tests := []struct {
		step string
	}{
		{StepGitHub},
		{StepLinkedIn},
		{StepMerge},
		{StepWrite},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			assert.True(t, slices.ContainsFunc(events, func(e ProgressEvent) bool { return e.Step == tt.step }))
		})
	}
}

func TestRun_MissingCredentialsNeverNavigates(t *testing.T) {
	server := newGitHubServer(t)
	launched := false
	launcher := fetch.LauncherFunc(func(context.Context) (fetch.Session, error) {
		launched = true
		return &pageSession{}, nil
	})

	record, err := Run(context.Background(), Options{
		GitHub:     github.New(github.WithBaseURL(server.URL)),
		LinkedIn:   linkedin.New(launcher, linkedin.Credentials{}),
		Username:   "octocat",
		ProfileURL: profileURL,
		Now:        fixedNow,
	})
	require.NoError(t, err)

	assert.False(t, launched)
	assert.False(t, record.LinkedIn.IsOK())
	assert.Contains(t, record.LinkedIn.Err, "credentials")
	assert.Equal(t, []string{"Go", "Python"}, record.FinalSkills)
}

type staticGitHub struct{ result types.SourceResult[types.GitHubProfile] }

func (s staticGitHub) Scrape(context.Context, string) types.SourceResult[types.GitHubProfile] {
	return s.result
}

type staticLinkedIn struct{ result types.SourceResult[types.LinkedInProfile] }

func (s staticLinkedIn) Scrape(context.Context, string) types.SourceResult[types.LinkedInProfile] {
	return s.result
}

func TestRun_BothSourcesFailed(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.json")

	record, err := Run(context.Background(), Options{
		GitHub:         staticGitHub{types.Fail[types.GitHubProfile]("GitHub user not found or API limit reached (404)")},
		LinkedIn:       staticLinkedIn{types.Fail[types.LinkedInProfile]("LinkedIn scraping failed: boom")},
		OutputPath:     outPath,
		ValidateOutput: true,
		Now:            fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{}, record.FinalSkills)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `{"error":"GitHub user not found or API limit reached (404)"}`, string(doc["github"]))
	assert.JSONEq(t, `[]`, string(doc["final_skills"]))
}

func TestRun_NormalizesLinkedInEntries(t *testing.T) {
	record, err := Run(context.Background(), Options{
		GitHub: staticGitHub{types.Fail[types.GitHubProfile]("x")},
		LinkedIn: staticLinkedIn{types.Ok(types.LinkedInProfile{
			Name: "Jane",
			Experience: []types.RawEntry{
				"Engineer | Acme | Full-time | Remote | 2020 - 2024 | Built things",
				"  ",
				"Engineer | Acme | Full-time | Remote | 2020 - 2024 | Built things",
			},
		})},
		Now: fixedNow,
	})
	require.NoError(t, err)

	li := record.LinkedIn.Profile
	assert.Len(t, li.Experience, 1)
	require.Len(t, li.Positions, 1)
	assert.Equal(t, types.Position{Title: "Engineer", Company: "Acme", DateRange: "2020 - 2024", Description: "Built things"}, li.Positions[0])
	assert.NotNil(t, li.Schools)
}

func TestRun_WriteFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		GitHub:     staticGitHub{types.Fail[types.GitHubProfile]("x")},
		LinkedIn:   staticLinkedIn{types.Fail[types.LinkedInProfile]("y")},
		OutputPath: filepath.Join(t.TempDir(), "missing-dir", "out.json"),
		Now:        fixedNow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write profile record")
}

func TestRun_RequiresSources(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}

type memoryStore struct {
	mu        sync.Mutex
	createErr error
	saveErr   error
	runs      map[uuid.UUID]string
	artifacts map[string]any
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[uuid.UUID]string{}, artifacts: map[string]any{}}
}

func (m *memoryStore) CreateRun(_ context.Context, _, _ string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return uuid.Nil, m.createErr
	}
	id := uuid.New()
	m.runs[id] = db.StatusRunning
	return id, nil
}

func (m *memoryStore) SaveArtifact(_ context.Context, runID uuid.UUID, step string, content any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.artifacts[runID.String()+"/"+step] = content
	return nil
}

func (m *memoryStore) CompleteRun(_ context.Context, runID uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[runID] = status
	return nil
}

func TestRun_StoresRecord(t *testing.T) {
	tests := []struct {
		name     string
		github   types.SourceResult[types.GitHubProfile]
		linkedin types.SourceResult[types.LinkedInProfile]
		want     string
	}{
		{
			name:     "both sources",
			github:   types.Ok(types.GitHubProfile{Skills: []string{"Go"}}),
			linkedin: types.Ok(types.LinkedInProfile{Skills: []string{"Rust"}}),
			want:     db.StatusCompleted,
		},
		{
			name:     "one source",
			github:   types.Ok(types.GitHubProfile{Skills: []string{"Go"}}),
			linkedin: types.Fail[types.LinkedInProfile]("y"),
			want:     db.StatusPartial,
		},
		{
			name:     "no sources",
			github:   types.Fail[types.GitHubProfile]("x"),
			linkedin: types.Fail[types.LinkedInProfile]("y"),
			want:     db.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			var runID string

			record, err := Run(context.Background(), Options{
				GitHub:   staticGitHub{tt.github},
				LinkedIn: staticLinkedIn{tt.linkedin},
				Store:    store,
				Now:      fixedNow,
				OnProgress: func(e ProgressEvent) {
					if e.RunID != "" {
						runID = e.RunID
					}
				},
			})
			require.NoError(t, err)
			require.Len(t, store.runs, 1)

			for id, status := range store.runs {
				assert.Equal(t, tt.want, status)
				assert.Equal(t, id.String(), runID)
				assert.Same(t, record, store.artifacts[id.String()+"/"+db.StepProfileRecord])
			}
		})
	}
}

func TestRun_StoreFailuresAreNotFatal(t *testing.T) {
	store := newMemoryStore()
	store.saveErr = errors.New("connection reset")

	record, err := Run(context.Background(), Options{
		GitHub:   staticGitHub{types.Ok(types.GitHubProfile{Skills: []string{"Go"}})},
		LinkedIn: staticLinkedIn{types.Fail[types.LinkedInProfile]("y")},
		Store:    store,
		Now:      fixedNow,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, record.FinalSkills)

	store = newMemoryStore()
	store.createErr = errors.New("database is down")
	_, err = Run(context.Background(), Options{
		GitHub:   staticGitHub{types.Fail[types.GitHubProfile]("x")},
		LinkedIn: staticLinkedIn{types.Fail[types.LinkedInProfile]("y")},
		Store:    store,
		Now:      fixedNow,
	})
	require.NoError(t, err)
	assert.Empty(t, store.runs)
	assert.Empty(t, store.artifacts)
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, db.StatusFailed, runStatus(&types.ProfileRecord{}))
}
