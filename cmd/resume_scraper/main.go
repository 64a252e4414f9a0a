// Package main provides the entry point for the resume_scraper CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scraper/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "resume_scraper",
	Short: "Collect a professional profile from GitHub and LinkedIn",
	Long: `resume_scraper gathers a candidate's public GitHub profile and LinkedIn profile,
merges their skills and writes a single JSON artifact. The artifact can then be
enriched with resume-ready bullet points and skill categories.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "resume_scraper %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger; verbose lowers the level to debug
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func main() {
	slog.SetDefault(newLogger(os.Stderr, false))

	loaded, err := config.LoadDotEnv()
	if err != nil {
		slog.Warn("could not load environment file", "err", err)
	}
	if loaded == ".env.example" {
		slog.Warn("no .env found, falling back to .env.example")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
