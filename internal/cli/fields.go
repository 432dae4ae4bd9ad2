package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlfinder/internal/ir"
)

// FieldsOptions holds flags for the fields command.
type FieldsOptions struct {
	*RootOptions
	Host HostOptions
}

// FieldInfo is one registry entry as printed by the fields command.
type FieldInfo struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	MultiLanguage bool     `json:"multi_language"`
	Columns       []string `json:"columns,omitempty"`
	SubFields     []string `json:"subfields,omitempty"`
}

var fieldColumns = []string{"name", "type", "multilang", "columns", "subfields"}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FieldsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the field registry of the host database",
		Long: `List every registered field with its type, language support, extra
value columns and repeater sub-fields.

Example:
  sqlfinder fields --db ./site.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Host.Database, "db", "", "path to the SQLite host database (default from config)")

	return cmd
}

func runFields(opts *FieldsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	h, err := openHost(ctx, opts.RootOptions, opts.Host)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err)
	}
	defer h.Close()

	reg, err := h.store.Registry(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err)
	}

	defs := reg.Fields()
	infos := make([]FieldInfo, len(defs))
	rows := make([]*ir.Row, len(defs))
	for i, def := range defs {
		infos[i] = FieldInfo{
			Name:          def.Name,
			Type:          def.Type.String(),
			MultiLanguage: def.MultiLanguage,
			Columns:       def.Columns,
			SubFields:     def.SubFields,
		}
		rows[i] = ir.NewRow(fieldColumns, []any{
			def.Name,
			def.Type.String(),
			fmt.Sprint(def.MultiLanguage),
			strings.Join(def.Columns, ","),
			strings.Join(def.SubFields, ","),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	return formatter.Rows(fieldColumns, rows)
}
