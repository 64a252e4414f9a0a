package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scraper/internal/config"
	"github.com/jonathan/resume-scraper/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scrape runs recorded in PostgreSQL",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print an artifact stored for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var (
	runsDatabaseURL string
	runsLimit       int
	runsStep        string
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", db.DefaultListLimit, "Maximum number of runs to list")
	runsShowCmd.Flags().StringVar(&runsStep, "step", db.StepProfileRecord, "Artifact step to print")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// openDatabase connects using the flag or DATABASE_URL
func openDatabase(ctx context.Context) (*db.DB, error) {
	url := runsDatabaseURL
	if url == "" {
		env, err := config.FromEnv()
		if err != nil {
			return nil, err
		}
		url = env.DatabaseURL
	}
	if url == "" {
		return nil, fmt.Errorf("no database configured: pass --db-url or set %s", config.EnvDatabaseURL)
	}

	database, err := db.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func parseRunID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run id %q: %w", raw, err)
	}
	return id, nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	renderRuns(cmd.OutOrStdout(), runs)
	return nil
}

func renderRuns(w io.Writer, runs []db.Run) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Status", "GitHub", "LinkedIn", "Created"})
	for _, run := range runs {
		t.AppendRow(table.Row{run.ID, run.Status, run.GitHubUser, run.LinkedInURL, run.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}

	content, err := database.GetArtifact(ctx, id, runsStep)
	if err != nil {
		return err
	}
	if content == nil {
		return fmt.Errorf("run %s has no %s artifact (status %s)", id, runsStep, run.Status)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", content)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteRun(ctx, id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
	return nil
}
