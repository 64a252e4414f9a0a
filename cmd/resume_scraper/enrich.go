package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scraper/internal/config"
	"github.com/jonathan/resume-scraper/internal/enrichment"
	"github.com/jonathan/resume-scraper/internal/experience"
	"github.com/jonathan/resume-scraper/internal/llm"
	"github.com/jonathan/resume-scraper/internal/observability"
	"github.com/jonathan/resume-scraper/internal/schemas"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Turn a scraped profile record into resume-ready bullets and skill categories",
	Long: `Reads a profile record produced by 'scrape', rewrites each position and project
description as resume bullet points and groups the merged skills into categories
using Gemini. The input artifact is left untouched; a new enriched record is written.`,
	RunE: runEnrich,
}

var (
	enrichInput       string
	enrichOutput      string
	enrichAPIKey      string
	enrichTier        string
	enrichConcurrency int
	enrichVerbose     bool
)

func init() {
	enrichCmd.Flags().StringVarP(&enrichInput, "in", "i", "scraped_data.json", "Path to the scraped profile record")
	enrichCmd.Flags().StringVarP(&enrichOutput, "out", "o", "enriched_data.json", "Path of the enriched output JSON")
	enrichCmd.Flags().StringVar(&enrichAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	enrichCmd.Flags().StringVar(&enrichTier, "tier", string(llm.TierStandard), "Model tier: lite, standard or advanced")
	enrichCmd.Flags().IntVar(&enrichConcurrency, "concurrency", enrichment.DefaultConcurrency, "Maximum concurrent model requests")
	enrichCmd.Flags().BoolVarP(&enrichVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(enrichCmd)
}

// resolveAPIKey prefers the flag, then the environment
func resolveAPIKey() (string, error) {
	if enrichAPIKey != "" {
		return enrichAPIKey, nil
	}
	env, err := config.FromEnv()
	if err != nil {
		return "", err
	}
	if env.APIKey == "" {
		return "", fmt.Errorf("%w: pass --api-key or set %s", llm.ErrAPIKeyMissing, config.EnvGeminiAPIKey)
	}
	return env.APIKey, nil
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(os.Stderr, enrichVerbose)
	slog.SetDefault(logger)

	tier, err := llm.ParseTier(enrichTier)
	if err != nil {
		return err
	}

	record, err := experience.LoadProfileRecord(enrichInput)
	if err != nil {
		return fmt.Errorf("failed to load profile record: %w", err)
	}

	apiKey, err := resolveAPIKey()
	if err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	enricher := enrichment.New(client,
		enrichment.WithLogger(logger),
		enrichment.WithConcurrency(enrichConcurrency),
		enrichment.WithTier(tier),
	)
	enriched, err := enricher.Enrich(ctx, record)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	if err := experience.WriteJSON(enrichOutput, enriched); err != nil {
		return err
	}

	// Validate output against schema (non-fatal)
	if err := schemas.ValidateEnrichedFile(enrichOutput); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			logger.Warn("enriched record does not validate against schema", "err", err)
		} else {
			logger.Warn("could not validate enriched record", "err", err)
		}
	}

	if enrichVerbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintEnrichedRecord(enriched)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d position(s) and %d project(s)\n", len(enriched.Positions), len(enriched.Projects))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", enrichOutput)
	return nil
}
