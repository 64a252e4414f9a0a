// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/titanous/json5"
)

// DefaultOutput is where the scraped record is written when no path is given
const DefaultOutput = "scraped_data.json"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use environment values or defaults.
type Config struct {
	// Credentials
	GitHubToken      string `json:"github_token,omitempty"`      // Optional bearer token for the GitHub API
	LinkedInEmail    string `json:"linkedin_email,omitempty"`    // LinkedIn login
	LinkedInPassword string `json:"linkedin_password,omitempty"` // LinkedIn password
	APIKey           string `json:"api_key,omitempty"`           // Gemini API key for enrichment

	// Endpoints
	GitHubAPIURL     string `json:"github_api_url,omitempty" validate:"omitempty,url"`
	LinkedInLoginURL string `json:"linkedin_login_url,omitempty" validate:"omitempty,url"`
	DatabaseURL      string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Output
	Output string `json:"output,omitempty"` // Path of the scraped JSON artifact

	// Browser
	UserAgent  string `json:"user_agent,omitempty"`  // Overrides Chrome's user agent
	ChromePath string `json:"chrome_path,omitempty"` // Chrome binary; empty searches PATH

	// Behavior
	Headless    *bool `json:"headless,omitempty"`     // Run Chrome headless (default true)
	StrictLogin bool  `json:"strict_login,omitempty"` // Fail when login cannot be confirmed
	Sequential  bool  `json:"sequential,omitempty"`   // Scrape sources one after another
	Verbose     bool  `json:"verbose,omitempty"`      // Print detailed debug information

	Timing Timing `json:"timing"`
}

// Timing holds browser waits. Zero values fall back to defaults.
type Timing struct {
	ElementWait   Duration `json:"element_wait,omitempty" validate:"gte=0"`
	Login         Duration `json:"login,omitempty" validate:"gte=0"`
	Settle        Duration `json:"settle,omitempty" validate:"gte=0"`
	ScrollPause   Duration `json:"scroll_pause,omitempty" validate:"gte=0"`
	ActionTimeout Duration `json:"action_timeout,omitempty" validate:"gte=0"`
}

// Duration is a time.Duration that reads Go duration strings ("5s") from JSON
type Duration time.Duration

// UnmarshalJSON accepts a duration string ("1500ms") or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(n * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration
func Default() Config {
	headless := true
	return Config{
		GitHubAPIURL:     "https://api.github.com",
		LinkedInLoginURL: "https://www.linkedin.com/login",
		Output:           DefaultOutput,
		Headless:         &headless,
		Timing: Timing{
			ElementWait:   Duration(10 * time.Second),
			Login:         Duration(15 * time.Second),
			Settle:        Duration(5 * time.Second),
			ScrollPause:   Duration(2 * time.Second),
			ActionTimeout: Duration(30 * time.Second),
		},
	}
}

// LoadConfig loads configuration from a JSON or JSON5 file.
// A sibling <name>.local.<ext> file, when present, overrides the values it sets.
// Returns an error if a file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := decodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	localPath := LocalOverridePath(path)
	localData, err := os.ReadFile(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", localPath, err)
	}

	override, err := decodeConfig(localData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config JSON %s: %w", localPath, err)
	}
	headless := firstSet(override.Headless, cfg.Headless)
	cfg.Headless, override.Headless = nil, nil
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", localPath, err)
	}
	cfg.Headless = headless
	return cfg, nil
}

// LocalOverridePath returns the <name>.local.<ext> sibling of path
func LocalOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// decodeConfig reads JSON5 (comments, trailing commas, unquoted keys) into a Config.
// The document is normalized to plain JSON so field decoders see standard input.
func decodeConfig(data []byte) (*Config, error) {
	var generic any
	if err := json5.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(normalized, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required credentials are not checked here: a missing source credential
// degrades that source instead of failing the run.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &Error{Message: err.Error(), Cause: err}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, fmt.Sprintf("'%s' failed '%s' check", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return &Error{Message: strings.Join(messages, "; "), Cause: err}
}

// Error reports an invalid configuration
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return "config error: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer config file values over environment values and built-in defaults.
// Plain bools cannot distinguish unset from false, so a true default wins.
// Headless is a pointer so an explicit false survives the merge.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c
	headless := firstSet(c.Headless, defaults.Headless)

	// mergo follows pointers and would treat a pointed-to false as empty
	result.Headless, defaults.Headless = nil, nil
	// mergo only fails for mismatched types, which two Configs never are
	_ = mergo.Merge(&result, defaults)

	result.Headless = headless
	return result
}

// firstSet returns a copy of the first non-nil value
func firstSet(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			b := *v
			return &b
		}
	}
	return nil
}

// IsHeadless reports the headless setting, defaulting to true
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}
