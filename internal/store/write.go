package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
)

// DefineField registers a field and creates its value table.
func (s *Store) DefineField(ctx context.Context, def FieldDef) error {
	if err := field.ValidateName(def.Name); err != nil {
		return fmt.Errorf("field name: %w", err)
	}
	switch def.Type {
	case field.Text, field.File, field.Page, field.Repeater:
	default:
		return fmt.Errorf("field %s: type %s cannot be stored", def.Name, def.Type)
	}
	for _, c := range append(append([]string{}, def.Columns...), def.SubFields...) {
		if err := field.ValidateName(c); err != nil {
			return fmt.Errorf("field %s: %w", def.Name, err)
		}
	}
	if len(def.SubFields) > 0 && def.Type != field.Repeater {
		return fmt.Errorf("field %s: only repeaters have sub-fields", def.Name)
	}

	var langs []field.Language
	if def.MultiLanguage {
		var err error
		if langs, err = s.nonDefaultLanguages(ctx); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.sq.Insert("fields").
		Columns("name", "type", "multilang", "columns", "subfields").
		Values(def.Name, def.Type.String(), def.MultiLanguage, strings.Join(def.Columns, ","), strings.Join(def.SubFields, ",")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert field %s: %w", def.Name, err)
	}

	q := dialect.SQLite{}.Quote
	table := field.TableName(def.Name)
	cols := []string{
		q(field.EntityColumn) + " INTEGER NOT NULL",
		q(field.BaseColumn) + " NUMERIC",
		q(field.SortColumn) + " INTEGER NOT NULL DEFAULT 0",
	}
	for _, c := range def.Columns {
		cols = append(cols, q(c)+" NUMERIC")
	}
	for _, lang := range langs {
		cols = append(cols, q(lang.Column(field.BaseColumn))+" NUMERIC")
	}
	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (%s)", q(table), strings.Join(cols, ", ")),
		fmt.Sprintf("CREATE INDEX %s ON %s (%s, %s)", q("idx_"+table), q(table), q(field.EntityColumn), q(field.SortColumn)),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table for %s: %w", def.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Page is one row of the entity table. ID 0 lets SQLite assign one.
type Page struct {
	ID       int64
	ParentID int64
	Template string
	Name     string
	Status   int64
	Sort     int64
	Created  int64
}

// InsertPage adds an entity and returns its id.
func (s *Store) InsertPage(ctx context.Context, p Page) (int64, error) {
	cols := []string{"parent_id", "template", "name", "status", "sort", "created"}
	vals := []any{p.ParentID, p.Template, p.Name, p.Status, p.Sort, p.Created}
	if p.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{p.ID}, vals...)
	}

	query, args, err := s.sq.Insert("pages").Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("page id: %w", err)
	}
	return id, nil
}

// Value is one stored value of a field. Values of multi-valued fields are
// kept in the order they are given.
type Value struct {
	Data any

	// Lang holds translations by language id.
	Lang map[int64]any

	// Extra holds the field's extra columns by name.
	Extra map[string]any
}

// SetValue replaces the values of a field with a single value.
func (s *Store) SetValue(ctx context.Context, pageID int64, name string, data any) error {
	return s.SetValues(ctx, pageID, name, Value{Data: data})
}

// SetValues replaces every value of a field for one entity.
func (s *Store) SetValues(ctx context.Context, pageID int64, name string, values ...Value) error {
	reg, err := s.Registry(ctx)
	if err != nil {
		return err
	}
	def, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if def.Type == field.Text && len(values) > 1 {
		return fmt.Errorf("field %s holds a single value, got %d", name, len(values))
	}
	extra := make(map[string]bool, len(def.Columns))
	for _, c := range def.Columns {
		extra[c] = true
	}

	table := field.TableName(name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := s.sq.Delete(table).Where(squirrel.Eq{field.EntityColumn: pageID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}

	for i, v := range values {
		cols := []string{field.EntityColumn, field.BaseColumn, field.SortColumn}
		vals := []any{pageID, v.Data, i}

		for _, c := range sortedKeys(v.Extra) {
			if !extra[c] {
				return fmt.Errorf("field %s has no column %s", name, c)
			}
			cols = append(cols, c)
			vals = append(vals, v.Extra[c])
		}
		if len(v.Lang) > 0 && !def.MultiLanguage {
			return fmt.Errorf("field %s has no language values", name)
		}
		langIDs := make([]int64, 0, len(v.Lang))
		for id := range v.Lang {
			langIDs = append(langIDs, id)
		}
		sort.Slice(langIDs, func(a, b int) bool { return langIDs[a] < langIDs[b] })
		for _, id := range langIDs {
			cols = append(cols, field.Language{ID: id}.Column(field.BaseColumn))
			vals = append(vals, v.Lang[id])
		}

		query, args, err := s.sq.Insert(table).Columns(cols...).Values(vals...).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s value: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
