// Package github fetches a user's profile and repositories from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/skills"
	"github.com/jonathan/resume-scraper/internal/types"
)

// DefaultBaseURL is the public GitHub API
const DefaultBaseURL = "https://api.github.com"

// RepoPageSize is the number of most recently updated repositories requested
const RepoPageSize = 10

// ErrNotFound is returned when the profile request does not succeed
var ErrNotFound = errors.New("GitHub user not found or API limit reached")

// Client is the structured profile source
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*config)

type config struct {
	baseURL string
	token   string
	timeout time.Duration
	logger  *slog.Logger
	resty   *resty.Client
}

// WithToken attaches a bearer credential to every request
func WithToken(token string) Option {
	return func(c *config) { c.token = strings.TrimSpace(token) }
}

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *config) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRestyClient uses an existing resty client for transport
func WithRestyClient(client *resty.Client) Option {
	return func(c *config) { c.resty = client }
}

// New creates a Client
func New(opts ...Option) *Client {
	cfg := &config{
		baseURL: DefaultBaseURL,
		timeout: fetch.DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	httpClient := cfg.resty
	if httpClient == nil {
		httpClient = resty.New()
	}
	httpClient.
		SetBaseURL(cfg.baseURL).
		SetTimeout(cfg.timeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("User-Agent", fetch.DefaultUserAgent)
	if cfg.token != "" {
		httpClient.SetAuthToken(cfg.token)
	}

	return &Client{
		http:   httpClient,
		logger: cfg.logger.With("component", "github"),
	}
}

// userResponse is the subset of GET /users/{username} we use
type userResponse struct {
	Name        *string `json:"name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	PublicRepos int     `json:"public_repos"`
}

// repoResponse is the subset of a repository object we use
type repoResponse struct {
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	HTMLURL         string  `json:"html_url"`
	StargazersCount int     `json:"stargazers_count"`
	Language        *string `json:"language"`
	Fork            bool    `json:"fork"`
	CreatedAt       string  `json:"created_at"`
	PushedAt        string  `json:"pushed_at"`
}

// Scrape fetches the profile and repositories of username.
// It never returns a Go error: a failed profile request becomes an Err result,
// and a failed repository request degrades to an empty project list.
func (c *Client) Scrape(ctx context.Context, username string) types.SourceResult[types.GitHubProfile] {
	c.logger.Info("scraping GitHub", "username", username)

	user, err := c.fetchUser(ctx, username)
	if err != nil {
		c.logger.Error("GitHub profile request failed", "username", username, "error", err)
		return types.Fail[types.GitHubProfile]("%s", err.Error())
	}

	repos, err := c.fetchRepos(ctx, username)
	if err != nil {
		c.logger.Warn("GitHub repository request failed, continuing without projects", "username", username, "error", err)
		repos = nil
	}

	projects, languages := collectProjects(repos)

	c.logger.Info("GitHub profile scraped", "username", username, "projects", len(projects), "languages", len(languages))
	return types.Ok(types.GitHubProfile{
		Name:        deref(user.Name),
		Bio:         deref(user.Bio),
		Location:    deref(user.Location),
		PublicRepos: user.PublicRepos,
		Projects:    projects,
		Skills:      languages,
	})
}

func (c *Client) fetchUser(ctx context.Context, username string) (*userResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		Get("/users/{username}")
	if err != nil {
		return nil, fmt.Errorf("GitHub profile request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w (%d)", ErrNotFound, resp.StatusCode())
	}

	var user userResponse
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub profile: %w", err)
	}
	return &user, nil
}

func (c *Client) fetchRepos(ctx context.Context, username string) ([]repoResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("username", username).
		SetQueryParams(map[string]string{
			"sort":     "updated",
			"per_page": fmt.Sprint(RepoPageSize),
		}).
		Get("/users/{username}/repos")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode())
	}

	var repos []repoResponse
	if err := json.Unmarshal(resp.Body(), &repos); err != nil {
		return nil, fmt.Errorf("failed to decode repositories: %w", err)
	}
	return repos, nil
}

// collectProjects keeps non-fork repositories sorted by stars and gathers their languages
func collectProjects(repos []repoResponse) ([]types.Project, []string) {
	projects := make([]types.Project, 0, len(repos))
	var languages []string

	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		projects = append(projects, toProject(repo))
		if repo.Language != nil && strings.TrimSpace(*repo.Language) != "" {
			languages = append(languages, *repo.Language)
		}
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Stars > projects[j].Stars
	})

	return projects, skills.Dedupe(languages)
}

func toProject(repo repoResponse) types.Project {
	return types.Project{
		Name:        repo.Name,
		Description: repo.Description,
		URL:         repo.HTMLURL,
		Stars:       repo.StargazersCount,
		Language:    repo.Language,
		CreatedAt:   datePart(repo.CreatedAt),
		PushedAt:    datePart(repo.PushedAt),
	}
}

// datePart reduces an ISO timestamp to its YYYY-MM-DD prefix
func datePart(timestamp string) string {
	date, _, _ := strings.Cut(timestamp, "T")
	return date
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
