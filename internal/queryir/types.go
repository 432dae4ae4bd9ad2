package queryir

import "github.com/roach88/sqlfinder/internal/ir"

// Query is a sealed interface implemented by Select.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface implemented by Compare, FieldCompare
// and And.
type Predicate interface {
	predicateNode()
}

// Select returns the ids of the entities matching Filter.
//
// Semantics:
//
//	SELECT id FROM pages WHERE <filter> ORDER BY <order>, id LIMIT <limit> OFFSET <offset>
//
// Example:
//
//	Select{
//	  Filter: And{Predicates: []Predicate{
//	    Compare{Column: "template", Op: OpEq, Values: []ir.IRValue{ir.IRString("person")}},
//	    FieldCompare{Field: "age", Op: OpGte, Values: []ir.IRValue{ir.IRInt(18)}},
//	  }},
//	  Order: []OrderKey{{Field: "age", Descending: true}},
//	  Limit: 10,
//	}
type Select struct {
	Filter Predicate  // nil = every entity
	Order  []OrderKey // empty = sort, then id
	Limit  int        // 0 = no limit
	Offset int
}

func (Select) queryNode() {}

// OrderKey orders by an entity column or, when Field is not a column of
// the entity table, by the value of the field with that name.
type OrderKey struct {
	Field      string
	Descending bool
}

// Op is a comparison operator.
type Op string

const (
	OpEq       Op = "="
	OpNe       Op = "!="
	OpGt       Op = ">"
	OpLt       Op = "<"
	OpGte      Op = ">="
	OpLte      Op = "<="
	OpContains Op = "%="
)

// Ops lists the operators longest first, the order a parser must try them in.
var Ops = []Op{OpNe, OpGte, OpLte, OpContains, OpEq, OpGt, OpLt}

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte, OpContains:
		return true
	}
	return false
}

// Compare compares a column of the entity table.
//
// Example:
//
//	Compare{Column: "template", Op: OpEq, Values: []ir.IRValue{ir.IRString("post"), ir.IRString("page")}}
//
// Translates to SQL:
//
//	("pages"."template" = ? OR "pages"."template" = ?)
type Compare struct {
	Column string
	Op     Op
	Values []ir.IRValue
}

func (Compare) predicateNode() {}

// FieldCompare compares the value column of a field table. It holds when
// the entity has at least one matching value.
//
// Translates to SQL:
//
//	EXISTS (SELECT 1 FROM "field_title" AS "f" WHERE "f"."pages_id" = "pages"."id" AND "f"."data" LIKE ?)
type FieldCompare struct {
	Field  string
	Op     Op
	Values []ir.IRValue
}

func (FieldCompare) predicateNode() {}

// And holds when all predicates hold. Empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// EntityColumns are the columns of the entity table a selector can address.
var EntityColumns = []string{"id", "parent_id", "template", "name", "status", "sort", "created"}

// IsEntityColumn reports whether name is one of EntityColumns.
func IsEntityColumn(name string) bool {
	for _, c := range EntityColumns {
		if c == name {
			return true
		}
	}
	return false
}
