package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlfinder/internal/dialect"
	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/ir"
	"github.com/roach88/sqlfinder/internal/queryir"
)

// fieldAlias is the alias of a field table inside a correlated subquery.
const fieldAlias = "f"

// SQLCompiler compiles selector IR to parameterized SQL returning the ids
// of the matching entities.
//
// Every query ends with an ORDER BY whose last key is the entity id, so
// results are deterministic. Values are always parameters, never
// interpolated.
type SQLCompiler struct {
	// Dialect quotes identifiers. Placeholders are always "?".
	Dialect dialect.Dialect
}

// NewSQLCompiler creates a compiler for SQLite.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Dialect: dialect.SQLite{}}
}

// Compile converts a query to SQL and its parameters.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if res := queryir.Validate(q); !res.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(res.Problems, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	b.WriteString(c.entity(field.EntityIDColumn))
	b.WriteString(" FROM ")
	b.WriteString(c.Dialect.Quote(field.EntityTable))

	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = append(params, whereParams...)
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(c.orderClause(q.Order))

	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT ?")
		params = append(params, int64(q.Limit))
	case q.Offset > 0:
		b.WriteString(c.unbounded())
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ?")
		params = append(params, int64(q.Offset))
	}
	return b.String(), params, nil
}

// orderClause renders the ordering keys followed by the id tiebreaker.
// Without keys entities are ordered by their sort column.
func (c *SQLCompiler) orderClause(keys []queryir.OrderKey) string {
	if len(keys) == 0 {
		keys = []queryir.OrderKey{{Field: field.SortColumn}}
	}
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		expr := c.entity(k.Field)
		if !queryir.IsEntityColumn(k.Field) {
			expr = fmt.Sprintf("(SELECT min(%s) FROM %s WHERE %s)",
				c.fieldColumn(field.BaseColumn), c.fieldTable(k.Field), c.correlation())
		}
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts = append(parts, expr+" "+dir)
	}
	if last := keys[len(keys)-1]; last.Field != field.EntityIDColumn {
		parts = append(parts, c.entity(field.EntityIDColumn)+" ASC")
	}
	return strings.Join(parts, ", ")
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Compare:
		return c.compileComparison(c.entity(pred.Column), pred.Op, pred.Values)
	case *queryir.Compare:
		return c.compilePredicate(*pred)
	case queryir.FieldCompare:
		return c.compileFieldCompare(pred)
	case *queryir.FieldCompare:
		return c.compileFieldCompare(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileComparison renders expr op value for every value. Alternatives
// are joined with OR, except for OpNe, where they are joined with AND.
func (c *SQLCompiler) compileComparison(expr string, op queryir.Op, values []ir.IRValue) (string, []any, error) {
	parts := make([]string, 0, len(values))
	params := make([]any, 0, len(values))
	for _, v := range values {
		param, err := ir.ToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("convert value: %w", err)
		}
		switch op {
		case queryir.OpContains:
			parts = append(parts, expr+` LIKE ? ESCAPE '\'`)
			params = append(params, "%"+escapeLike(fmt.Sprint(param))+"%")
		default:
			parts = append(parts, expr+" "+string(op)+" ?")
			params = append(params, param)
		}
	}

	joiner := " OR "
	if op == queryir.OpNe {
		joiner = " AND "
	}
	sql := strings.Join(parts, joiner)
	if len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, params, nil
}

// compileFieldCompare tests the values of a field table with a correlated
// EXISTS. OpNe becomes NOT EXISTS over equality, so entities without any
// value match.
func (c *SQLCompiler) compileFieldCompare(fc queryir.FieldCompare) (string, []any, error) {
	op, exists := fc.Op, "EXISTS"
	if op == queryir.OpNe {
		op, exists = queryir.OpEq, "NOT EXISTS"
	}
	cond, params, err := c.compileComparison(c.fieldColumn(field.BaseColumn), op, fc.Values)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("%s (SELECT 1 FROM %s WHERE %s AND %s)", exists, c.fieldTable(fc.Field), c.correlation(), cond)
	return sql, params, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	var parts []string
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// unbounded renders the LIMIT an OFFSET needs in dialects that do not
// accept OFFSET alone.
func (c *SQLCompiler) unbounded() string {
	switch c.Dialect.Name() {
	case "postgres":
		return ""
	case "mysql":
		return " LIMIT 18446744073709551615"
	default:
		return " LIMIT -1"
	}
}

func (c *SQLCompiler) entity(column string) string {
	return dialect.Qualify(c.Dialect, field.EntityTable, column)
}

func (c *SQLCompiler) fieldTable(name string) string {
	return c.Dialect.Quote(field.TableName(name)) + " AS " + c.Dialect.Quote(fieldAlias)
}

func (c *SQLCompiler) fieldColumn(column string) string {
	return dialect.Qualify(c.Dialect, fieldAlias, column)
}

// correlation ties the field table to the outer entity row.
func (c *SQLCompiler) correlation() string {
	return c.fieldColumn(field.EntityColumn) + " = " + c.entity(field.EntityIDColumn)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
