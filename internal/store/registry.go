package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sqlfinder/internal/field"
)

var (
	// ErrUnknownField is returned for names the registry does not know.
	ErrUnknownField = errors.New("unknown field")

	// ErrEntityNotFound is returned when an entity id does not exist.
	ErrEntityNotFound = errors.New("entity not found")
)

// pagesColumns are the entity columns readable as fields.
var pagesColumns = map[string]bool{
	"parent_id": true,
	"template":  true,
	"name":      true,
	"status":    true,
	"created":   true,
}

// FieldDef is one entry of the field registry.
type FieldDef struct {
	Name string
	Type field.Kind

	// MultiLanguage adds one value column per non-default language.
	MultiLanguage bool

	// Columns are extra value columns next to data, e.g. a file description.
	Columns []string

	// SubFields are the fields of a repeater's items.
	SubFields []string
}

// Registry is an in-memory snapshot of the field registry.
type Registry struct {
	fields map[string]FieldDef
}

// Registry loads the field registry.
func (s *Store) Registry(ctx context.Context) (*Registry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type, multilang, columns, subfields
		FROM fields
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	r := &Registry{fields: make(map[string]FieldDef)}
	for rows.Next() {
		var (
			def                      FieldDef
			kind, columns, subfields string
		)
		if err := rows.Scan(&def.Name, &kind, &def.MultiLanguage, &columns, &subfields); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		if def.Type, err = field.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("field %s: %w", def.Name, err)
		}
		def.Columns = splitList(columns)
		def.SubFields = splitList(subfields)
		r.fields[def.Name] = def
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return r, nil
}

// Classify implements finder.Registry. Columns of the entity table
// classify as PagesTable.
func (r *Registry) Classify(name string) (field.Classification, error) {
	if pagesColumns[name] {
		return field.Classification{Kind: field.PagesTable}, nil
	}
	def, ok := r.fields[name]
	if !ok {
		return field.Classification{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return field.Classification{Kind: def.Type, MultiLanguage: def.MultiLanguage}, nil
}

// RepeaterFields returns the sub-fields declared for a repeater.
func (r *Registry) RepeaterFields(name string) ([]string, error) {
	def, ok := r.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if def.Type != field.Repeater {
		return nil, fmt.Errorf("field %s is a %s field, not a repeater", name, def.Type)
	}
	return append([]string(nil), def.SubFields...), nil
}

// Lookup returns the definition of a registered field.
func (r *Registry) Lookup(name string) (FieldDef, bool) {
	def, ok := r.fields[name]
	return def, ok
}

// Fields returns every definition ordered by name.
func (r *Registry) Fields() []FieldDef {
	out := make([]FieldDef, 0, len(r.fields))
	for _, def := range r.fields {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
