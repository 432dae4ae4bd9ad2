package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
)

type sqlState int

const (
	sqlUnset sqlState = iota
	sqlComputed
)

// memoizedSQL is the write-once statement of a finder.
type memoizedSQL struct {
	state sqlState
	value string
}

func (m *memoizedSQL) computed() bool { return m.state == sqlComputed }

func (m *memoizedSQL) set(query string) {
	m.state = sqlComputed
	m.value = query
}

// Raw select placeholders.
const (
	placeholderData  = "#data#"
	placeholderPages = "#pages#"
)

// SQL composes the statement on the first call and returns the same text
// on every later call. After it succeeds the finder and its field specs
// can no longer be changed.
func (f *Finder) SQL(ctx context.Context) (string, error) {
	if f.memo.computed() {
		return f.memo.value, nil
	}
	if f.joined {
		return "", configError(ErrCodeJoined, "", "finder is joined into another finder and composes only as part of it")
	}

	stop := f.timer.Start("compose")
	query, err := f.compose(ctx, field.Root())
	stop()
	if err != nil {
		return "", err
	}

	for _, s := range f.fields {
		s.Freeze()
	}
	f.memo.set(query)
	return query, nil
}

// compose renders the finder's full statement at path. Joined children are
// composed in join order, each at path.Child(prefix).
func (f *Finder) compose(ctx context.Context, path field.AliasPath) (string, error) {
	if dup := f.duplicateOutput(); dup != "" {
		return "", configError(ErrCodeDuplicateAlias, dup, "output column %q is produced twice", dup)
	}

	ids, err := f.resolveIDs(ctx)
	if err != nil {
		return "", err
	}
	langs, err := f.languages(ctx)
	if err != nil {
		return "", err
	}

	q := f.dialect.Quote
	scope := path.Scope()
	qual := func(table, column string) string { return dialect.Qualify(f.dialect, table, column) }

	items := []string{qual(scope, field.EntityIDColumn) + " AS " + q(field.EntityIDColumn)}
	for _, c := range f.projected() {
		items = append(items, qual(scope, c)+" AS "+q(c))
	}

	var joins []string
	for _, j := range f.joins {
		childPath := path.Child(j.prefix)
		childScope := childPath.Scope()
		for _, c := range j.child.OutputColumns() {
			items = append(items, qual(childScope, c)+" AS "+q(j.prefix+"."+c))
		}

		child, err := j.child.compose(ctx, childPath)
		if err != nil {
			return "", fmt.Errorf("join %q: %w", j.prefix, err)
		}
		joins = append(joins, fmt.Sprintf("LEFT JOIN (%s) AS %s ON %s = %s",
			child, q(childScope), qual(childScope, j.key.Child), f.anchor(path, j.key.Parent)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(items, ", "))
	b.WriteString(" FROM (")
	b.WriteString(f.ownSubquery(path, langs))
	b.WriteString(") AS ")
	b.WriteString(q(scope))
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	b.WriteString(" WHERE ")
	b.WriteString(qual(scope, field.EntityIDColumn))
	b.WriteString(" IN (")
	b.WriteString(dialect.IDList(ids))
	b.WriteString(")")
	if f.sort && len(ids) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(f.dialect.OrderByIDs(qual(scope, field.EntityIDColumn), ids))
	}
	query := b.String()

	f.logger.Debug("finder composed",
		"selector", f.selector,
		"path", path.String(),
		"ids", len(ids),
		"joins", len(f.joins),
		"bytes", len(query),
	)
	return query, nil
}

// ownSubquery selects the entity id, every field and every raw select from
// the entity table.
func (f *Finder) ownSubquery(path field.AliasPath, langs field.Languages) string {
	q := f.dialect.Quote
	base := path.Base()
	rc := field.RenderContext{
		Dialect:   f.dialect,
		Path:      path,
		Languages: langs,
		Lookup:    f.lookup,
	}

	items := []string{dialect.Qualify(f.dialect, base, field.EntityIDColumn) + " AS " + q(field.EntityIDColumn)}
	var joins []string
	for _, s := range f.fields {
		items = append(items, s.RenderSelect(rc)...)
		if j := s.RenderJoin(rc); j != "" {
			joins = append(joins, j)
		}
	}
	for _, r := range f.raw {
		expr := strings.NewReplacer(
			placeholderData, langs.DataColumn(field.BaseColumn),
			placeholderPages, q(base),
		).Replace(r.expr)
		items = append(items, "("+expr+") AS "+q(r.alias))
	}

	query := "SELECT " + strings.Join(items, ", ") + " FROM " + q(field.EntityTable) + " AS " + q(base)
	if len(joins) > 0 {
		query += " " + strings.Join(joins, " ")
	}
	return query
}

// anchor renders the parent side of a join key at path.
func (f *Finder) anchor(path field.AliasPath, parent string) string {
	if sibling, column, ok := strings.Cut(parent, "."); ok {
		return dialect.Qualify(f.dialect, path.Child(sibling).Scope(), column)
	}
	return dialect.Qualify(f.dialect, path.Scope(), parent)
}

func (f *Finder) resolveIDs(ctx context.Context) ([]int64, error) {
	if f.deps.Resolver == nil {
		return nil, errors.New("finder: no selector resolver configured")
	}
	selector := f.selector
	if f.limit != "" {
		if strings.TrimSpace(selector) == "" {
			selector = f.limit
		} else {
			selector += ", " + f.limit
		}
	}

	stop := f.timer.Start("resolve")
	ids, err := f.deps.Resolver.ResolveIDs(ctx, selector)
	stop()
	if err != nil {
		return nil, fmt.Errorf("resolve selector %q: %w", selector, err)
	}
	return ids, nil
}

func (f *Finder) languages(ctx context.Context) (field.Languages, error) {
	if f.deps.Languages == nil {
		return field.Languages{}, nil
	}
	current, err := f.deps.Languages.CurrentLanguage(ctx)
	if err != nil {
		return field.Languages{}, fmt.Errorf("current language: %w", err)
	}
	def, err := f.deps.Languages.DefaultLanguage(ctx)
	if err != nil {
		return field.Languages{}, fmt.Errorf("default language: %w", err)
	}
	return field.Languages{Current: current, Default: def}, nil
}
