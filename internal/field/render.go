package field

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlfinder/internal/dialect"
)

const (
	// EntityTable is the host table holding one row per entity.
	EntityTable = "pages"

	// EntityIDColumn is the identifier column of EntityTable.
	EntityIDColumn = "id"
)

// RenderContext carries what a spec needs to render at one position of
// the finder tree.
type RenderContext struct {
	Dialect   dialect.Dialect
	Path      AliasPath
	Languages Languages

	// Lookup classifies the sub-columns of Page and Repeater fields.
	// Nil means every sub-column is a Text field without language values.
	Lookup func(name string) Classification
}

func (rc RenderContext) lookup(name string) Classification {
	if rc.Lookup == nil {
		return Classification{Kind: Text}
	}
	return rc.Lookup(name)
}

func (rc RenderContext) qualifier(table string) func(string) string {
	return func(column string) string {
		return dialect.Qualify(rc.Dialect, table, column)
	}
}

// RenderSelect returns the select items the spec adds to the base subquery.
func (s *Spec) RenderSelect(rc RenderContext) []string {
	q := rc.Dialect.Quote
	switch s.kind {
	case Closure:
		return []string{dialect.Literal("") + " AS " + q(s.alias)}
	case PagesTable:
		items := make([]string, 0, len(s.columns))
		for _, c := range s.columns {
			src := c
			if c == BaseColumn {
				src = s.name
			}
			items = append(items, dialect.Qualify(rc.Dialect, rc.Path.Base(), src)+" AS "+q(s.OutputName(c)))
		}
		return items
	}

	table := rc.Path.Table(s.alias)
	items := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		items = append(items, dialect.Qualify(rc.Dialect, table, c)+" AS "+q(s.OutputName(c)))
	}
	return items
}

// RenderJoin returns the LEFT JOIN that feeds the spec's select items,
// or "" for kinds that read nothing from a field table.
func (s *Spec) RenderJoin(rc RenderContext) string {
	var sub string
	switch s.kind {
	case Closure, PagesTable:
		return ""
	case Text:
		sub = s.textSubquery(rc)
	case File:
		sub = s.aggregateSubquery(rc)
	case Page:
		if len(s.columns) == 1 {
			sub = s.aggregateSubquery(rc)
		} else {
			sub = s.pageSubquery(rc)
		}
	case Repeater:
		sub = s.repeaterSubquery(rc)
	default:
		panic(fmt.Sprintf("field: unhandled kind %v", s.kind))
	}

	table := rc.Path.Table(s.alias)
	return fmt.Sprintf("LEFT JOIN (%s) AS %s ON %s = %s",
		sub,
		rc.Dialect.Quote(table),
		dialect.Qualify(rc.Dialect, table, JoinKeyColumn),
		dialect.Qualify(rc.Dialect, rc.Path.Base(), EntityIDColumn),
	)
}

// textSubquery reads one row per entity, resolving the base column's language.
func (s *Spec) textSubquery(rc RenderContext) string {
	q := rc.Dialect.Quote
	items := []string{q(EntityColumn) + " AS " + q(JoinKeyColumn)}
	for _, c := range s.columns {
		expr := q(c)
		if c == BaseColumn {
			expr = rc.Languages.Resolve(q, BaseColumn, s.languageCapable, s.multiLanguage, s.strictLanguage)
		}
		items = append(items, expr+" AS "+q(c))
	}
	return "SELECT " + strings.Join(items, ", ") + " FROM " + q(TableName(s.name))
}

// aggregateSubquery concatenates every column per entity in sort order.
func (s *Spec) aggregateSubquery(rc RenderContext) string {
	q := rc.Dialect.Quote
	items := []string{q(EntityColumn) + " AS " + q(JoinKeyColumn)}
	for _, c := range s.columns {
		items = append(items, rc.Dialect.GroupConcat(q(c), q(SortColumn), s.separator)+" AS "+q(c))
	}
	return "SELECT " + strings.Join(items, ", ") +
		" FROM " + q(TableName(s.name)) +
		" GROUP BY " + q(EntityColumn)
}

// subSource describes where one sub-column of a Page or Repeater is read.
type subSource struct {
	table string
	key   string
	value string
}

func (s *Spec) subSource(rc RenderContext, column string) subSource {
	alias := rc.Path.SubTable(s.alias, column)
	qual := rc.qualifier(alias)
	c := rc.lookup(column)
	if c.Kind == PagesTable {
		return subSource{table: EntityTable, key: EntityIDColumn, value: qual(column)}
	}
	return subSource{
		table: TableName(column),
		key:   EntityColumn,
		value: rc.Languages.Resolve(qual, BaseColumn, c.MultiLanguage, s.multiLanguage, s.strictLanguage),
	}
}

// pageSubquery joins the referenced entities' values for each sub-column.
//
// Grouping includes the reference itself, so an entity referencing several
// entities yields one row per reference. The reference is selected as is,
// since aggregating it would repeat it once per sub-column value. Sub-columns
// aggregated in the same group are not aligned with each other when their
// value counts differ.
func (s *Spec) pageSubquery(rc RenderContext) string {
	q := rc.Dialect.Quote
	table := rc.Path.Table(s.alias)
	t := rc.qualifier(table)

	items := []string{
		t(EntityColumn) + " AS " + q(JoinKeyColumn),
		t(BaseColumn) + " AS " + q(BaseColumn),
	}
	var joins []string
	for _, c := range s.SubColumns() {
		src := s.subSource(rc, c)
		alias := rc.Path.SubTable(s.alias, c)
		items = append(items, rc.Dialect.GroupConcat(src.value, t(SortColumn), s.separator)+" AS "+q(c))
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s AS %s ON %s = %s",
			q(src.table), q(alias), dialect.Qualify(rc.Dialect, alias, src.key), t(BaseColumn)))
	}

	return "SELECT " + strings.Join(items, ", ") +
		" FROM " + q(TableName(s.name)) + " AS " + q(table) +
		" " + strings.Join(joins, " ") +
		" GROUP BY " + t(EntityColumn) + ", " + t(BaseColumn)
}

// repeaterSubquery resolves sub-columns of the group items listed in the
// base column. The first sub-column is matched by list membership, later
// ones share its item id.
func (s *Spec) repeaterSubquery(rc RenderContext) string {
	q := rc.Dialect.Quote
	if len(s.columns) == 1 {
		return "SELECT " + q(EntityColumn) + " AS " + q(JoinKeyColumn) + ", " +
			q(BaseColumn) + " AS " + q(BaseColumn) +
			" FROM " + q(TableName(s.name))
	}

	table := rc.Path.Table(s.alias)
	t := rc.qualifier(table)
	items := []string{
		t(EntityColumn) + " AS " + q(JoinKeyColumn),
		t(BaseColumn) + " AS " + q(BaseColumn),
	}
	var joins []string
	var firstKey string
	for i, c := range s.SubColumns() {
		src := s.subSource(rc, c)
		alias := rc.Path.SubTable(s.alias, c)
		key := dialect.Qualify(rc.Dialect, alias, src.key)

		order := rc.Dialect.ListPosition(t(BaseColumn), key)
		items = append(items, rc.Dialect.GroupConcat(src.value, order, s.separator)+" AS "+q(c))

		on := rc.Dialect.ListContains(t(BaseColumn), key)
		if i == 0 {
			firstKey = key
		} else {
			on = key + " = " + firstKey
		}
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s AS %s ON %s", q(src.table), q(alias), on))
	}

	return "SELECT " + strings.Join(items, ", ") +
		" FROM " + q(TableName(s.name)) + " AS " + q(table) +
		" " + strings.Join(joins, " ") +
		" GROUP BY " + t(EntityColumn) + ", " + t(BaseColumn)
}
