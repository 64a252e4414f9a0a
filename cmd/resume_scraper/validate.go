package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-scraper/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate <artifact.json>",
	Short: "Validate an artifact against a JSON Schema",
	Long: `Validates a JSON artifact. Without --schema the bundled profile record schema is
used; --enriched selects the bundled enriched record schema instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validateSchema   string
	validateEnriched bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON Schema file (defaults to the bundled schema)")
	validateCmd.Flags().BoolVar(&validateEnriched, "enriched", false, "Validate against the bundled enriched record schema")
	validateCmd.MarkFlagsMutuallyExclusive("schema", "enriched")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	var err error
	switch {
	case validateSchema != "":
		err = schemas.ValidateJSON(validateSchema, path)
	case validateEnriched:
		err = schemas.ValidateEnrichedFile(path)
	default:
		err = schemas.ValidateProfileRecordFile(path)
	}

	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed\n%s", validationErr.Error())
			return fmt.Errorf("%s does not match the schema (%d error(s))", path, len(validationErr.Errors))
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", path)
	return nil
}
