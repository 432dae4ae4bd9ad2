package dialect

import "fmt"

// SQLite targets SQLite 3.44 or newer (ordered aggregates).
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Quote(ident string) string { return quoteWith(ident, `"`) }

func (SQLite) GroupConcat(expr, orderBy, sep string) string {
	return fmt.Sprintf("group_concat(%s, %s ORDER BY %s)", expr, Literal(sep), orderBy)
}

func (SQLite) ListContains(list, item string) string {
	return fmt.Sprintf("instr(',' || %s || ',', ',' || %s || ',') > 0", list, item)
}

func (SQLite) ListPosition(list, item string) string {
	return fmt.Sprintf("instr(',' || %s || ',', ',' || %s || ',')", list, item)
}

func (SQLite) OrderByIDs(expr string, ids []int64) string {
	return caseOrdinal(expr, ids)
}
