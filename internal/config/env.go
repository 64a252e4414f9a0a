package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by FromEnv
const (
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvLinkedInEmail    = "LINKEDIN_EMAIL"
	EnvLinkedInPassword = "LINKEDIN_PASSWORD"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvHeadless         = "SCRAPER_HEADLESS"
	EnvSettleDelay      = "SCRAPER_SETTLE_DELAY"
	EnvWaitTimeout      = "SCRAPER_WAIT_TIMEOUT"
	EnvLoginTimeout     = "SCRAPER_LOGIN_TIMEOUT"
)

// LoadDotEnv loads .env from the working directory. When it is missing,
// .env.example is used instead and the returned path says so.
// Existing environment variables are never overridden.
func LoadDotEnv() (string, error) {
	for _, path := range []string{".env", ".env.example"} {
		err := godotenv.Load(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return "", nil
}

// FromEnv builds a Config from environment variables.
// Unset variables leave the corresponding field zero.
func FromEnv() (*Config, error) {
	cfg := &Config{
		GitHubToken:      os.Getenv(EnvGitHubToken),
		LinkedInEmail:    os.Getenv(EnvLinkedInEmail),
		LinkedInPassword: os.Getenv(EnvLinkedInPassword),
		APIKey:           os.Getenv(EnvGeminiAPIKey),
		DatabaseURL:      os.Getenv(EnvDatabaseURL),
	}

	if raw := os.Getenv(EnvHeadless); raw != "" {
		headless, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", EnvHeadless, err)
		}
		cfg.Headless = &headless
	}

	durations := []struct {
		name string
		dst  *Duration
	}{
		{EnvSettleDelay, &cfg.Timing.Settle},
		{EnvWaitTimeout, &cfg.Timing.ElementWait},
		{EnvLoginTimeout, &cfg.Timing.Login},
	}
	for _, d := range durations {
		raw := os.Getenv(d.name)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", d.name, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("%s must not be negative, got: %s", d.name, raw)
		}
		*d.dst = Duration(parsed)
	}

	return cfg, nil
}

// Resolve layers a config file (may be nil) over the environment and the built-in defaults.
func Resolve(file *Config) (Config, error) {
	env, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	layered := env.MergeWithDefaults(Default())

	if file == nil {
		return layered, nil
	}
	return file.MergeWithDefaults(layered), nil
}
