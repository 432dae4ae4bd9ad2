package finder

import "github.com/roach88/sqlfinder/internal/ir"

// Computer fills a computed column from the fully loaded entity of a row.
type Computer interface {
	Compute(e *ir.Entity) any
}

// ComputeFunc adapts a function to the Computer interface.
type ComputeFunc func(e *ir.Entity) any

// Compute implements Computer.
func (fn ComputeFunc) Compute(e *ir.Entity) any {
	return fn(e)
}

// Filter decides whether a row is kept.
type Filter func(row *ir.Row) bool

type computedColumn struct {
	name     string
	computer Computer
}

// keep reports whether every filter accepts the row. All filters run even
// after one has rejected it.
func keep(row *ir.Row, filters []Filter) bool {
	ok := true
	for _, fn := range filters {
		if !fn(row) {
			ok = false
		}
	}
	return ok
}
