package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/finder"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Host  HostOptions
	Limit int

	// Column, when set, prints only the values of one output column.
	Column string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <defs-dir> <finder>",
		Short: "Execute a finder and print its rows",
		Long: `Execute a finder against the host database and print one row per
selected entity.

Joined columns are named "<prefix>.<column>". With --pg-dsn the statement
runs on PostgreSQL, while field types and languages are still read from the
SQLite host database.

Example:
  sqlfinder run ./finders posts --db ./site.db
  sqlfinder run ./finders posts --limit 5 --format json
  sqlfinder run ./finders posts --column title`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinder(opts, args[0], args[1], cmd)
		},
	}

	addHostFlags(cmd, &opts.Host)
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "select at most n entities (0 keeps the definition's limit)")
	cmd.Flags().StringVar(&opts.Column, "column", "", "print only the values of one output column")

	return cmd
}

func runFinder(opts *RunOptions, defsDir, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)
	logger := opts.Logger()

	if opts.Limit < 0 {
		return outputCommandError(formatter, ErrCodeGeneric, NewExitError(ExitCommandError, "--limit must not be negative"))
	}

	def, err := loadDefinition(defsDir, name)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	logger.Debug("finder loaded", "finder", name, "selector", def.Selector, "fields", len(def.Fields), "joins", len(def.Joins))

	h, err := openHost(ctx, opts.RootOptions, opts.Host)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err)
	}
	defer h.Close()

	var extra []finder.Option
	if opts.Limit > 0 {
		extra = append(extra, finder.WithLimit(fmt.Sprintf("limit=%d", opts.Limit)))
	}

	f, err := h.build(def, extra...)
	if err != nil {
		return outputFinderError(formatter, err)
	}
	for _, w := range f.Warnings() {
		formatter.VerboseLog("warning: %s", w)
	}

	if opts.Column != "" {
		values, err := f.Values(ctx, opts.Column)
		if err != nil {
			return outputFinderError(formatter, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(values)
		}
		for _, v := range values {
			fmt.Fprintln(formatter.Writer, v)
		}
		return nil
	}

	rows, err := f.Objects(ctx)
	if err != nil {
		return outputFinderError(formatter, err)
	}
	logger.Debug("finder executed", "finder", name, "rows", len(rows))
	return formatter.Rows(f.OutputColumns(), rows)
}
