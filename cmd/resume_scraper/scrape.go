package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scraper/internal/config"
	"github.com/jonathan/resume-scraper/internal/db"
	"github.com/jonathan/resume-scraper/internal/fetch"
	"github.com/jonathan/resume-scraper/internal/github"
	"github.com/jonathan/resume-scraper/internal/linkedin"
	"github.com/jonathan/resume-scraper/internal/observability"
	"github.com/jonathan/resume-scraper/internal/pipeline"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <github-username> <linkedin-profile-url>",
	Short: "Scrape GitHub and LinkedIn and write the merged profile record",
	Long: `Fetches the GitHub profile and non-fork repositories through the REST API and
drives a Chrome session through LinkedIn login, profile and skills pages. Skills from
both sources are merged and the record is written as JSON.

Either source may fail without aborting the run; its failure is recorded in the
artifact. Configuration is read from the environment (.env), an optional --config
file (JSON5, with a sibling .local override) and finally the flags below.`,
	Args: cobra.ExactArgs(2),
	RunE: runScrape,
}

var (
	scrapeConfigPath  string
	scrapeOutput      string
	scrapeDatabaseURL string
	scrapeHeadful     bool
	scrapeSequential  bool
	scrapeStrictLogin bool
	scrapeVerbose     bool
	scrapeUserAgent   string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config file (values can be overridden by other flags)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "out", "o", "scraped_data.json", "Path of the output JSON artifact")
	scrapeCmd.Flags().StringVar(&scrapeDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	scrapeCmd.Flags().BoolVar(&scrapeHeadful, "headful", false, "Show the Chrome window instead of running headless")
	scrapeCmd.Flags().BoolVar(&scrapeSequential, "sequential", false, "Scrape GitHub and LinkedIn one after another")
	scrapeCmd.Flags().BoolVar(&scrapeStrictLogin, "strict-login", false, "Fail the LinkedIn source when login cannot be confirmed")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")
	scrapeCmd.Flags().StringVar(&scrapeUserAgent, "user-agent", "", "User agent for the Chrome session (defaults to Chrome's own)")

	rootCmd.AddCommand(scrapeCmd)
}

// resolveScrapeConfig layers flags over the config file, environment and defaults
func resolveScrapeConfig(cmd *cobra.Command) (config.Config, error) {
	var file *config.Config
	if scrapeConfigPath != "" {
		loaded, err := config.LoadConfig(scrapeConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		file = loaded
	}

	cfg, err := config.Resolve(file)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output = scrapeOutput
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = scrapeDatabaseURL
	}
	if flags.Changed("headful") {
		headless := !scrapeHeadful
		cfg.Headless = &headless
	}
	if flags.Changed("sequential") {
		cfg.Sequential = scrapeSequential
	}
	if flags.Changed("strict-login") {
		cfg.StrictLogin = scrapeStrictLogin
	}
	if flags.Changed("verbose") {
		cfg.Verbose = scrapeVerbose
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = scrapeUserAgent
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// linkedinTiming maps configured delays onto the extractor timing
func linkedinTiming(cfg config.Config) linkedin.Timing {
	timing := linkedin.DefaultTiming()
	if d := cfg.Timing.ElementWait.Std(); d > 0 {
		timing.ElementWait = d
	}
	if d := cfg.Timing.Login.Std(); d > 0 {
		timing.Login = d
	}
	if d := cfg.Timing.Settle.Std(); d > 0 {
		timing.Settle = d
	}
	if d := cfg.Timing.ScrollPause.Std(); d > 0 {
		timing.ScrollPause = d
		timing.SkillsScrollPause = d
	}
	return timing
}

func browserOptions(cfg config.Config) *fetch.BrowserOptions {
	opts := fetch.DefaultBrowserOptions()
	opts.Headless = cfg.IsHeadless()
	opts.UserAgent = cfg.UserAgent
	opts.ExecPath = cfg.ChromePath
	if d := cfg.Timing.ActionTimeout.Std(); d > 0 {
		opts.ActionTimeout = d
	}
	return opts
}

// buildScrapeOptions wires the sources for one run; the store is attached by the caller
func buildScrapeOptions(cfg config.Config, logger *slog.Logger, username, profileURL string) pipeline.Options {
	ghOpts := []github.Option{github.WithLogger(logger)}
	if cfg.GitHubAPIURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(cfg.GitHubAPIURL))
	}
	if cfg.GitHubToken != "" {
		ghOpts = append(ghOpts, github.WithToken(cfg.GitHubToken))
	}

	liOpts := []linkedin.Option{
		linkedin.WithTiming(linkedinTiming(cfg)),
		linkedin.WithStrictLogin(cfg.StrictLogin),
		linkedin.WithLogger(logger),
	}
	if cfg.LinkedInLoginURL != "" {
		liOpts = append(liOpts, linkedin.WithLoginURL(cfg.LinkedInLoginURL))
	}
	scraper := linkedin.New(
		fetch.NewChromeLauncher(browserOptions(cfg)),
		linkedin.Credentials{Email: cfg.LinkedInEmail, Password: cfg.LinkedInPassword},
		liOpts...,
	)

	opts := pipeline.Options{
		GitHub:         github.New(ghOpts...),
		LinkedIn:       scraper,
		Username:       fetch.GitHubUsername(username),
		ProfileURL:     fetch.NormalizeProfileURL(profileURL),
		OutputPath:     cfg.Output,
		Sequential:     cfg.Sequential,
		ValidateOutput: true,
		Logger:         logger,
	}
	if cfg.Verbose {
		opts.Printer = observability.NewPrinter(os.Stdout)
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			logger.Debug(event.Message, "step", event.Step)
		}
	}
	return opts
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := resolveScrapeConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	opts := buildScrapeOptions(cfg, logger, args[0], args[1])

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("database unavailable, continuing without run history", "err", err)
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				logger.Warn("database migration failed, continuing without run history", "err", err)
			} else {
				opts.Store = database
			}
		}
	}

	record, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if record.GitHub.Err != "" {
		_, _ = fmt.Fprintf(out, "GitHub: %s\n", record.GitHub.Err)
	}
	if record.LinkedIn.Err != "" {
		_, _ = fmt.Fprintf(out, "LinkedIn: %s\n", record.LinkedIn.Err)
	}
	_, _ = fmt.Fprintf(out, "Merged %d skill(s)\n", len(record.FinalSkills))
	_, _ = fmt.Fprintf(out, "Scraped data saved to %s\n", cfg.Output)
	return nil
}
