package ir

import "slices"

// Row is one materialized result row.
//
// Columns keep the order the statement selected them in; values assigned
// later (computed columns) are appended after the selected ones.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a row from parallel column and value slices.
// Values are normalized with FromSQL.
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, FromSQL(v))
	}
	return r
}

// ID returns the row's identifier column, or 0 when it is missing.
func (r *Row) ID() int64 {
	id, _ := AsInt64(r.values["id"])
	return id
}

// Get returns the value for a column and whether the column exists.
func (r *Row) Get(col string) (any, bool) {
	v, ok := r.values[col]
	return v, ok
}

// String returns the column value as text. Missing and NULL columns yield "".
func (r *Row) String(col string) string {
	switch v := r.values[col].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return FormatValue(v)
	}
}

// Set assigns a column value, appending the column if it is new.
func (r *Row) Set(col string, v any) {
	if _, ok := r.values[col]; !ok {
		r.columns = append(r.columns, col)
	}
	r.values[col] = v
}

// Columns returns a copy of the ordered column names.
func (r *Row) Columns() []string {
	return slices.Clone(r.columns)
}

// Map returns the plain-mapping shape of the row.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}
