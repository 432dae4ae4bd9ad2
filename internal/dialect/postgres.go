package dialect

import "fmt"

// Postgres targets PostgreSQL 9.5 or newer.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Quote(ident string) string { return quoteWith(ident, `"`) }

func (Postgres) GroupConcat(expr, orderBy, sep string) string {
	return fmt.Sprintf("string_agg(CAST(%s AS TEXT), %s ORDER BY %s)", expr, Literal(sep), orderBy)
}

func (Postgres) ListContains(list, item string) string {
	return fmt.Sprintf("CAST(%s AS TEXT) = ANY(string_to_array(%s, ','))", item, list)
}

func (Postgres) ListPosition(list, item string) string {
	return fmt.Sprintf("array_position(string_to_array(%s, ','), CAST(%s AS TEXT))", list, item)
}

func (Postgres) OrderByIDs(expr string, ids []int64) string {
	return caseOrdinal(expr, ids)
}
