package finder

import (
	"github.com/roach88/sqlfinder/internal/field"
)

// Definition is the declarative form of a finder, as loaded from CUE
// definitions and YAML scenarios.
type Definition struct {
	Selector string            `yaml:"selector" json:"selector"`
	Fields   []FieldDefinition `yaml:"fields,omitempty" json:"fields,omitempty"`
	Raw      []RawDefinition   `yaml:"raw,omitempty" json:"raw,omitempty"`
	Joins    []JoinDefinition  `yaml:"joins,omitempty" json:"joins,omitempty"`
	Limit    string            `yaml:"limit,omitempty" json:"limit,omitempty"`

	// Sort overrides the finder's sort switch when set.
	Sort *bool `yaml:"sort,omitempty" json:"sort,omitempty"`
}

// FieldDefinition describes one field of a Definition.
type FieldDefinition struct {
	Name    string   `yaml:"name" json:"name"`
	Alias   string   `yaml:"alias,omitempty" json:"alias,omitempty"`
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	// AllColumns requests every declared sub-field of a repeater.
	AllColumns bool `yaml:"all_columns,omitempty" json:"all_columns,omitempty"`

	// Type fixes the kind ("text", "file", "page", "repeater",
	// "pagestable") and skips classification.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// MultiLanguage marks an explicitly typed field as having language
	// columns. Ignored without Type.
	MultiLanguage bool `yaml:"multi_language,omitempty" json:"multi_language,omitempty"`

	Separator        string `yaml:"separator,omitempty" json:"separator,omitempty"`
	SiblingSeparator string `yaml:"sibling_separator,omitempty" json:"sibling_separator,omitempty"`
	StrictLanguage   bool   `yaml:"strict_language,omitempty" json:"strict_language,omitempty"`
	DefaultLanguage  bool   `yaml:"default_language,omitempty" json:"default_language,omitempty"`
}

// RawDefinition is a raw select expression.
type RawDefinition struct {
	Alias string `yaml:"alias" json:"alias"`
	Expr  string `yaml:"expr" json:"expr"`
}

// JoinDefinition embeds another finder. Params are parsed by
// ParseJoinOptions.
type JoinDefinition struct {
	Finder Definition        `yaml:"finder" json:"finder"`
	Params map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

// Build creates a finder from def. Joined finders are built with the same
// deps and options. Every configuration error is returned before anything
// is composed.
func Build(def Definition, deps Deps, opts ...Option) (*Finder, error) {
	all := append([]Option{}, opts...)
	if def.Limit != "" {
		all = append(all, WithLimit(def.Limit))
	}
	if def.Sort != nil {
		all = append(all, WithSort(*def.Sort))
	}
	f := New(def.Selector, deps, all...)

	for _, fd := range def.Fields {
		fieldOpts, err := fd.options()
		if err != nil {
			return nil, err
		}
		if _, err := f.AddField(fd.Name, fieldOpts...); err != nil {
			return nil, err
		}
		if fd.AllColumns {
			if err := f.AddAllRepeaterFields(fd.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range def.Raw {
		if err := f.AddRawSelect(r.Alias, r.Expr); err != nil {
			return nil, err
		}
	}
	// A joined child is an independent row set; only its own definition
	// limits it.
	childOpts := append(append([]Option{}, opts...), WithLimit(""))
	for _, jd := range def.Joins {
		joinOpts, err := ParseJoinOptions(jd.Params)
		if err != nil {
			return nil, err
		}
		child, err := Build(jd.Finder, deps, childOpts...)
		if err != nil {
			return nil, err
		}
		if _, err := f.Join(child, joinOpts); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (fd FieldDefinition) options() ([]field.Option, error) {
	var opts []field.Option
	if fd.Alias != "" {
		opts = append(opts, field.WithAlias(fd.Alias))
	}
	if fd.Type != "" {
		kind, err := field.ParseKind(fd.Type)
		if err != nil {
			return nil, fromFieldError(fd.Name, err)
		}
		if kind == field.Closure {
			return nil, configError(ErrCodeInvalidOption, fd.Name, "computed columns cannot be declared")
		}
		opts = append(opts, field.WithType(kind, fd.MultiLanguage))
	}
	if len(fd.Columns) > 0 {
		opts = append(opts, field.WithColumns(fd.Columns...))
	}
	if fd.Separator != "" {
		opts = append(opts, field.WithSeparator(fd.Separator))
	}
	if fd.SiblingSeparator != "" {
		opts = append(opts, field.WithSiblingSeparator(fd.SiblingSeparator))
	}
	if fd.StrictLanguage {
		opts = append(opts, field.WithStrictLanguage())
	}
	if fd.DefaultLanguage {
		opts = append(opts, field.WithoutMultiLanguage())
	}
	return opts, nil
}
