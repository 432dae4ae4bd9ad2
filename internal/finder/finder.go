package finder

import (
	"log/slog"
	"strings"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
)

// Finder is a reusable query specification over the entities a selector
// resolves to.
type Finder struct {
	selector string
	deps     Deps
	dialect  dialect.Dialect
	logger   *slog.Logger
	timer    Timer
	prefixes PrefixGenerator
	sort     bool
	limit    string

	fields        []*field.Spec
	raw           []rawSelect
	computed      []computedColumn
	filtersBefore []Filter
	filtersAfter  []Filter
	joins         []*join
	warnings      []Warning

	// joined is set once the finder is embedded in another finder.
	joined bool
	memo   memoizedSQL
}

// rawSelect is a caller-provided select expression.
//
// "#data#" is replaced with the value column of the current language and
// "#pages#" with the quoted alias of the entity table.
type rawSelect struct {
	alias string
	expr  string
}

// New creates a finder for selector.
func New(selector string, deps Deps, opts ...Option) *Finder {
	f := &Finder{
		selector: selector,
		deps:     deps,
		dialect:  dialect.SQLite{},
		logger:   slog.Default(),
		timer:    noopTimer{},
		prefixes: UUIDPrefixGenerator{},
		sort:     true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Selector returns the selector the finder was created with.
func (f *Finder) Selector() string { return f.selector }

// Limit returns the limit modifier, or "".
func (f *Finder) Limit() string { return f.limit }

// Warnings returns the non-fatal problems recorded so far.
func (f *Finder) Warnings() []Warning {
	out := make([]Warning, len(f.warnings))
	copy(out, f.warnings)
	return out
}

// Fields returns the field specs in insertion order.
func (f *Finder) Fields() []*field.Spec {
	out := make([]*field.Spec, len(f.fields))
	copy(out, f.fields)
	return out
}

// Field returns the spec added under name, or nil.
func (f *Finder) Field(name string) *field.Spec {
	for _, s := range f.fields {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// AddField adds a field. Unless field.WithType is given the field is
// classified through the registry; a field the registry does not know is
// read as text and recorded as a warning.
func (f *Finder) AddField(name string, opts ...field.Option) (*field.Spec, error) {
	if err := f.mutable(name); err != nil {
		return nil, err
	}
	s, err := field.New(name, opts...)
	if err != nil {
		return nil, fromFieldError(name, err)
	}
	if !s.ExplicitKind() {
		f.classify(s)
	}
	if err := f.checkOutputs(s.OutputColumns()...); err != nil {
		return nil, err
	}
	f.fields = append(f.fields, s)
	return s, nil
}

// AddFields adds several fields with default options.
func (f *Finder) AddFields(names ...string) error {
	for _, name := range names {
		if _, err := f.AddField(name); err != nil {
			return err
		}
	}
	return nil
}

// AddColumns requests sub-columns of an already added field.
func (f *Finder) AddColumns(name string, cols ...string) error {
	if err := f.mutable(name); err != nil {
		return err
	}
	s := f.Field(name)
	if s == nil {
		return configError(ErrCodeInvalidOption, name, "field %q has not been added", name)
	}
	if s.Kind() == field.Closure {
		return configError(ErrCodeInvalidOption, name, "computed column %q has no sub-columns", name)
	}
	seen := make(map[string]bool)
	for _, c := range s.Columns() {
		seen[c] = true
	}
	outputs := make([]string, len(cols))
	for i, c := range cols {
		if seen[c] {
			return configError(ErrCodeDuplicateColumn, name, "column %q is already requested", c)
		}
		seen[c] = true
		outputs[i] = s.OutputName(c)
	}
	if err := f.checkOutputs(outputs...); err != nil {
		return err
	}
	if err := s.AddColumns(cols...); err != nil {
		return fromFieldError(name, err)
	}
	return nil
}

// RepeaterFields lists the declared sub-fields of repeater fields.
// Registries that implement it enable AddAllRepeaterFields.
type RepeaterFields interface {
	RepeaterFields(name string) ([]string, error)
}

// AddAllRepeaterFields requests every declared sub-field of a repeater.
func (f *Finder) AddAllRepeaterFields(name string) error {
	s := f.Field(name)
	if s == nil || s.Kind() != field.Repeater {
		return configError(ErrCodeInvalidOption, name, "%q is not a repeater field of this finder", name)
	}
	rf, ok := f.deps.Registry.(RepeaterFields)
	if !ok {
		return configError(ErrCodeInvalidOption, name, "registry does not list repeater fields")
	}
	subs, err := rf.RepeaterFields(name)
	if err != nil {
		return &ConfigError{Code: ErrCodeInvalidOption, Field: name, Message: err.Error(), Err: err}
	}
	have := make(map[string]bool)
	for _, c := range s.Columns() {
		have[c] = true
	}
	var missing []string
	for _, sub := range subs {
		if !have[sub] {
			missing = append(missing, sub)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return f.AddColumns(name, missing...)
}

// AddClosure registers a computed column. Its value is filled in after the
// statement ran, from the entity of each row.
func (f *Finder) AddClosure(name string, c Computer) error {
	if err := f.mutable(name); err != nil {
		return err
	}
	if c == nil {
		return configError(ErrCodeInvalidOption, name, "computer is nil")
	}
	s, err := field.NewClosure(name)
	if err != nil {
		return fromFieldError(name, err)
	}
	if err := f.checkOutputs(name); err != nil {
		return err
	}
	f.fields = append(f.fields, s)
	f.computed = append(f.computed, computedColumn{name: name, computer: c})
	return nil
}

// AddRawSelect adds a hand-written select expression under alias.
// The expression is passed through unchecked.
func (f *Finder) AddRawSelect(alias, expr string) error {
	if err := f.mutable(alias); err != nil {
		return err
	}
	if err := field.ValidateName(alias); err != nil {
		return fromFieldError(alias, err)
	}
	if strings.TrimSpace(expr) == "" {
		return configError(ErrCodeInvalidOption, alias, "raw select expression is empty")
	}
	if err := f.checkOutputs(alias); err != nil {
		return err
	}
	f.raw = append(f.raw, rawSelect{alias: alias, expr: expr})
	return nil
}

// FilterBefore registers a filter that runs before computed columns are set.
func (f *Finder) FilterBefore(fn Filter) error {
	if err := f.mutable(""); err != nil {
		return err
	}
	f.filtersBefore = append(f.filtersBefore, fn)
	return nil
}

// FilterAfter registers a filter that runs after computed columns are set.
func (f *Finder) FilterAfter(fn Filter) error {
	if err := f.mutable(""); err != nil {
		return err
	}
	f.filtersAfter = append(f.filtersAfter, fn)
	return nil
}

func (f *Finder) mutable(name string) error {
	if f.memo.computed() {
		return configError(ErrCodeComposed, name, "finder has already composed its statement")
	}
	if f.joined {
		return configError(ErrCodeJoined, name, "finder is joined into another finder")
	}
	return nil
}

func (f *Finder) classify(s *field.Spec) {
	if f.deps.Registry == nil {
		return
	}
	c, err := f.deps.Registry.Classify(s.Name())
	if err != nil {
		w := Warning{Field: s.Name(), Err: err}
		f.warnings = append(f.warnings, w)
		f.logger.Warn("field classification failed, reading as text", "field", s.Name(), "error", err)
		return
	}
	s.Classify(c)
}

// lookup classifies sub-columns at compose time. Unknown names read as
// text without language values.
func (f *Finder) lookup(name string) field.Classification {
	if f.deps.Registry == nil {
		return field.Classification{Kind: field.Text}
	}
	c, err := f.deps.Registry.Classify(name)
	if err != nil {
		return field.Classification{Kind: field.Text}
	}
	return c
}

// ownOutputs returns the output columns of the base subquery after id, in
// select order.
func (f *Finder) ownOutputs() []string {
	var out []string
	for _, s := range f.fields {
		out = append(out, s.OutputColumns()...)
	}
	for _, r := range f.raw {
		out = append(out, r.alias)
	}
	return out
}

// projected returns the own output columns exposed by the finder's
// statement. A field named like a join prefix stays in the base subquery,
// where it anchors the join, but is not projected.
func (f *Finder) projected() []string {
	suppressed := make(map[string]bool)
	for _, j := range f.joins {
		if s := f.Field(j.prefix); s != nil {
			for _, c := range s.OutputColumns() {
				suppressed[c] = true
			}
		}
	}
	var out []string
	for _, c := range f.ownOutputs() {
		if !suppressed[c] {
			out = append(out, c)
		}
	}
	return out
}

// OutputColumns returns the columns of the finder's statement in order.
func (f *Finder) OutputColumns() []string {
	out := []string{field.EntityIDColumn}
	out = append(out, f.projected()...)
	for _, j := range f.joins {
		for _, c := range j.child.OutputColumns() {
			out = append(out, j.prefix+"."+c)
		}
	}
	return out
}

func (f *Finder) checkOutputs(cols ...string) error {
	taken := make(map[string]bool)
	taken[field.EntityIDColumn] = true
	for _, c := range f.ownOutputs() {
		taken[c] = true
	}
	for _, c := range cols {
		if taken[c] {
			return configError(ErrCodeDuplicateAlias, c, "output column %q is already taken", c)
		}
		taken[c] = true
	}
	return nil
}

// duplicateOutput finds an output column produced twice, which can only
// happen when a spec was renamed through its own setter.
func (f *Finder) duplicateOutput() string {
	seen := map[string]bool{field.EntityIDColumn: true}
	for _, c := range f.ownOutputs() {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}
