package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// getBinaryPath returns the path to the resume_scraper binary for testing
func getBinaryPath(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "resume_scraper")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/resume_scraper ./cmd/resume_scraper'", binaryPath)
	}

	return binaryPath
}

// captureCmd returns a throwaway command whose output lands in the returned buffer
func captureCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

// clearScraperEnv blanks every variable the config layer reads
func clearScraperEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GITHUB_TOKEN", "LINKEDIN_EMAIL", "LINKEDIN_PASSWORD", "GEMINI_API_KEY", "DATABASE_URL",
		"SCRAPER_HEADLESS", "SCRAPER_SETTLE_DELAY", "SCRAPER_WAIT_TIMEOUT", "SCRAPER_LOGIN_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
}
