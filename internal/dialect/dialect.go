// Package dialect renders the few SQL constructs that differ between the
// databases a finder can target.
//
// The composer only ever needs identifier quoting, string literals, an
// ordered group concatenation, membership in a comma-delimited id list and
// an ordinal ordering over a fixed id sequence. Everything else it emits is
// portable SQL.
package dialect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dialect renders database-specific SQL fragments.
type Dialect interface {
	// Name returns the registry name ("sqlite", "mysql", "postgres").
	Name() string

	// Quote quotes an identifier, escaping embedded quote characters.
	Quote(ident string) string

	// GroupConcat aggregates expr into one separator-joined string,
	// ordered by orderBy.
	GroupConcat(expr, orderBy, sep string) string

	// ListContains is true when item is a member of the comma-delimited list.
	ListContains(list, item string) string

	// ListPosition orders rows by the position of item within list.
	ListPosition(list, item string) string

	// OrderByIDs returns an ORDER BY expression that re-imposes the given
	// id sequence on expr.
	OrderByIDs(expr string, ids []int64) string
}

// Literal renders a single-quoted SQL string literal.
// Doubling the quote is accepted by every supported dialect.
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Qualify renders table.column with both parts quoted.
func Qualify(d Dialect, table, column string) string {
	return d.Quote(table) + "." + d.Quote(column)
}

// IDList renders ids as a comma-separated list for an IN clause.
// An empty list renders NULL so that "IN (NULL)" matches no rows.
func IDList(ids []int64) string {
	if len(ids) == 0 {
		return "NULL"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

var registry = map[string]Dialect{
	"sqlite":   SQLite{},
	"mysql":    MySQL{},
	"postgres": Postgres{},
}

// ByName looks up a dialect by its registry name.
func ByName(name string) (Dialect, error) {
	d, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q: must be one of %v", name, Names())
	}
	return d, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// caseOrdinal maps each id to its position with a CASE expression.
func caseOrdinal(expr string, ids []int64) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(expr)
	for i, id := range ids {
		fmt.Fprintf(&b, " WHEN %d THEN %d", id, i)
	}
	b.WriteString(" END")
	return b.String()
}

func quoteWith(ident string, q string) string {
	return q + strings.ReplaceAll(ident, q, q+q) + q
}
