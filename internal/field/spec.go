package field

import (
	"fmt"
	"slices"
)

const (
	// BaseColumn is the value column every field table carries.
	BaseColumn = "data"

	// EntityColumn links a field row to its owning entity.
	EntityColumn = "pages_id"

	// JoinKeyColumn is the id column every field subquery exposes.
	JoinKeyColumn = "pageid"

	// SortColumn orders the rows of multi-valued fields.
	SortColumn = "sort"

	// DefaultSiblingSeparator joins an alias and a sub-column name.
	DefaultSiblingSeparator = ":"

	// DefaultSeparator joins aggregated values.
	DefaultSeparator = ","
)

// Spec describes one field requested by a finder.
type Spec struct {
	name             string
	alias            string
	kind             Kind
	explicitKind     bool
	languageCapable  bool
	columns          []string
	siblingSeparator string
	separator        string
	multiLanguage    bool
	strictLanguage   bool
	frozen           bool
}

// New creates a spec for name. Without WithType the spec is a Text field
// until Classify is called.
func New(name string, opts ...Option) (*Spec, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s := &Spec{
		name:             name,
		alias:            name,
		kind:             Text,
		columns:          []string{BaseColumn},
		siblingSeparator: DefaultSiblingSeparator,
		separator:        DefaultSeparator,
		multiLanguage:    true,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewClosure creates the placeholder spec of a computed column.
func NewClosure(name string) (*Spec, error) {
	return New(name, WithType(Closure, false))
}

// Name returns the source field name.
func (s *Spec) Name() string { return s.name }

// Alias returns the output column base name.
func (s *Spec) Alias() string { return s.alias }

// Kind returns the variant.
func (s *Spec) Kind() Kind { return s.kind }

// ExplicitKind reports whether the caller fixed the kind.
func (s *Spec) ExplicitKind() bool { return s.explicitKind }

// LanguageCapable reports whether the host stores per-language values.
func (s *Spec) LanguageCapable() bool { return s.languageCapable }

// MultiLanguage reports whether language resolution is enabled.
func (s *Spec) MultiLanguage() bool { return s.multiLanguage }

// StrictLanguage reports whether the default-language fallback is off.
func (s *Spec) StrictLanguage() bool { return s.strictLanguage }

// Separator returns the aggregation separator.
func (s *Spec) Separator() string { return s.separator }

// SiblingSeparator returns the alias/sub-column separator.
func (s *Spec) SiblingSeparator() string { return s.siblingSeparator }

// Columns returns a copy of the columns, base column first.
func (s *Spec) Columns() []string { return slices.Clone(s.columns) }

// SubColumns returns the columns after the base column.
func (s *Spec) SubColumns() []string { return slices.Clone(s.columns[1:]) }

// Classify applies a registry classification. An explicit kind given by
// the caller is kept.
func (s *Spec) Classify(c Classification) {
	if s.explicitKind {
		return
	}
	s.kind = c.Kind
	s.languageCapable = c.MultiLanguage
}

// SetAlias changes the output base name.
func (s *Spec) SetAlias(alias string) error {
	if s.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, s.name)
	}
	if err := ValidateName(alias); err != nil {
		return err
	}
	s.alias = alias
	return nil
}

// AddColumns appends sub-columns. Adding a column twice, including the
// base column, is an error and leaves the spec unchanged.
func (s *Spec) AddColumns(cols ...string) error {
	if s.frozen {
		return fmt.Errorf("%w: %s", ErrFrozen, s.name)
	}
	seen := make(map[string]bool, len(s.columns)+len(cols))
	for _, c := range s.columns {
		seen[c] = true
	}
	for _, c := range cols {
		if err := ValidateName(c); err != nil {
			return err
		}
		if seen[c] {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, s.name, c)
		}
		seen[c] = true
	}
	s.columns = append(s.columns, cols...)
	return nil
}

// Freeze blocks further alias and column changes.
func (s *Spec) Freeze() { s.frozen = true }

// OutputName returns the output column name for one of the spec's columns.
func (s *Spec) OutputName(col string) string {
	if col == BaseColumn {
		return s.alias
	}
	return s.alias + s.siblingSeparator + col
}

// OutputColumns returns the output column names in select order.
func (s *Spec) OutputColumns() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = s.OutputName(c)
	}
	return out
}

// Identifiers returns every table alias the spec renders at path p.
func (s *Spec) Identifiers(p AliasPath) []string {
	switch s.kind {
	case Closure, PagesTable:
		return nil
	}
	ids := []string{p.Table(s.alias)}
	if s.kind == Page || s.kind == Repeater {
		for _, c := range s.SubColumns() {
			ids = append(ids, p.SubTable(s.alias, c))
		}
	}
	return ids
}
