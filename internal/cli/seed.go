package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Database  string `json:"database"`
	Languages int    `json:"languages"`
	Fields    int    `json:"fields"`
	Pages     int    `json:"pages"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Create a host database from a YAML fixture",
		Long: `Create or extend a SQLite host database from a YAML fixture of
languages, fields and pages.

Example:
  sqlfinder seed ./site.yaml --db ./site.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite host database (default from config)")

	return cmd
}

func runSeed(opts *SeedOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)
	logger := opts.Logger()

	cfg, err := opts.Config()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err)
	}
	database := firstNonEmpty(opts.Database, cfg.Database)

	fx, err := store.LoadFixture(fixturePath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeNotFound, WrapExitError(ExitCommandError, "failed to load fixture", err))
	}

	st, err := store.Open(database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	logger.Debug("seeding", "fixture", fixturePath, "db", database)
	if err := st.Seed(ctx, fx); err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, WrapExitError(ExitFailure, "failed to seed database", err))
	}

	result := SeedResult{
		Database:  database,
		Languages: len(fx.Languages),
		Fields:    len(fx.Fields),
		Pages:     len(fx.Pages),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Seeded %s: %d language(s), %d field(s), %d page(s)\n",
		result.Database, result.Languages, result.Fields, result.Pages)
	return nil
}
