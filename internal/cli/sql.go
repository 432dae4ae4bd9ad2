package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/finder"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Host    HostOptions
	Dialect string
}

// SQLResult is the JSON payload of the sql command.
type SQLResult struct {
	Finder   string   `json:"finder"`
	SQL      string   `json:"sql"`
	Columns  []string `json:"columns"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <defs-dir> <finder>",
		Short: "Print the composed statement of a finder",
		Long: `Compose a finder from its CUE definition and print the SQL statement.

Selectors are resolved against the host database, so the statement carries
the resolved id list.

Example:
  sqlfinder sql ./finders posts --db ./site.db
  sqlfinder sql ./finders posts --dialect mysql --lang german`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], args[1], cmd)
		},
	}

	addHostFlags(cmd, &opts.Host)
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", fmt.Sprintf("SQL dialect %v (default from config)", dialect.Names()))

	return cmd
}

func runSQL(opts *SQLOptions, defsDir, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	def, err := loadDefinition(defsDir, name)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	h, err := openHost(ctx, opts.RootOptions, opts.Host)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err)
	}
	defer h.Close()

	var extra []finder.Option
	cfg, _ := opts.Config()
	if dname := firstNonEmpty(opts.Dialect, cfgDialect(cfg.Dialect, h)); dname != "" {
		d, err := dialect.ByName(dname)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, WrapExitError(ExitCommandError, "invalid dialect", err))
		}
		extra = append(extra, finder.WithDialect(d))
	}

	f, err := h.build(def, extra...)
	if err != nil {
		return outputFinderError(formatter, err)
	}
	query, err := f.SQL(ctx)
	if err != nil {
		return outputFinderError(formatter, err)
	}

	result := SQLResult{Finder: name, SQL: query, Columns: f.OutputColumns()}
	for _, w := range f.Warnings() {
		result.Warnings = append(result.Warnings, w.String())
		formatter.VerboseLog("warning: %s", w)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, query)
	return nil
}

// cfgDialect returns the configured dialect unless the host executes on
// PostgreSQL, whose dialect is already set.
func cfgDialect(configured string, h *host) string {
	if h.pg != nil {
		return ""
	}
	return configured
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
