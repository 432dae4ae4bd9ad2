package queryir

import (
	"fmt"
	"regexp"

	"github.com/roach88/sqlfinder/internal/ir"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each rejected node.
	Problems []string
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a query before compilation:
//   - Compare addresses an entity column, FieldCompare a valid field name
//   - every comparison has a known operator and at least one value
//   - OpContains compares strings
//   - order keys name a column or valid field, limit and offset are not negative
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
	for _, k := range sel.Order {
		if !IsEntityColumn(k.Field) && !fieldPattern.MatchString(k.Field) {
			v.addProblem("invalid sort key %q", k.Field)
		}
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Compare:
		if !IsEntityColumn(pred.Column) {
			v.addProblem("unknown entity column %q", pred.Column)
		}
		v.validateComparison(pred.Column, pred.Op, pred.Values)
	case *Compare:
		v.validatePredicate(*pred)
	case FieldCompare:
		if !fieldPattern.MatchString(pred.Field) {
			v.addProblem("invalid field name %q", pred.Field)
		}
		v.validateComparison(pred.Field, pred.Op, pred.Values)
	case *FieldCompare:
		v.validatePredicate(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateComparison(name string, op Op, values []ir.IRValue) {
	if !op.Valid() {
		v.addProblem("%s: unknown operator %q", name, op)
	}
	if len(values) == 0 {
		v.addProblem("%s: comparison without value", name)
	}
	for _, val := range values {
		switch val.(type) {
		case nil:
			v.addProblem("%s: nil value", name)
		case ir.IRString:
		default:
			if op == OpContains {
				v.addProblem("%s: %s needs a text value, got %T", name, op, val)
			}
		}
	}
}
