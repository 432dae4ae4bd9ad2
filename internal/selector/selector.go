// Package selector parses host selector strings into selector IR.
//
// A selector is a comma-separated list of clauses "key op value":
//
//	template=person, title%=smith|jones, age>=18, sort=-age, limit=10
//
// Operators are =, !=, >, <, >=, <= and %= (contains). A value may list
// alternatives separated by "|". The keys id, parent, template, name,
// status and created compare columns of the entity table; sort, limit and
// start control ordering and paging; any other key compares the value of
// the field with that name.
package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/sqlfinder/internal/ir"
	"github.com/roach88/sqlfinder/internal/queryir"
)

// Reserved keys.
const (
	KeySort  = "sort"
	KeyLimit = "limit"
	KeyStart = "start"
)

// columnKeys maps selector keys to entity table columns.
var columnKeys = map[string]string{
	"id":       "id",
	"parent":   "parent_id",
	"template": "template",
	"name":     "name",
	"status":   "status",
	"created":  "created",
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Error reports a clause that could not be parsed.
type Error struct {
	Clause  string
	Message string
}

func (e *Error) Error() string {
	if e.Clause == "" {
		return "selector: " + e.Message
	}
	return fmt.Sprintf("selector: %s (clause %q)", e.Message, e.Clause)
}

// Parse parses a selector. An empty selector matches every entity.
func Parse(s string) (queryir.Select, error) {
	var sel queryir.Select
	var preds []queryir.Predicate

	for _, clause := range strings.Split(s, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		key, op, values, err := splitClause(clause)
		if err != nil {
			return queryir.Select{}, err
		}

		switch key {
		case KeySort:
			if op != queryir.OpEq {
				return queryir.Select{}, &Error{Clause: clause, Message: "sort only supports ="}
			}
			for _, v := range values {
				k := queryir.OrderKey{Field: v}
				if rest, ok := strings.CutPrefix(v, "-"); ok {
					k = queryir.OrderKey{Field: rest, Descending: true}
				}
				if col, ok := columnKeys[k.Field]; ok {
					k.Field = col
				}
				sel.Order = append(sel.Order, k)
			}
		case KeyLimit, KeyStart:
			n, err := parseCount(clause, op, values)
			if err != nil {
				return queryir.Select{}, err
			}
			if key == KeyLimit {
				sel.Limit = n
			} else {
				sel.Offset = n
			}
		default:
			lits := literals(op, values)
			if col, ok := columnKeys[key]; ok {
				preds = append(preds, queryir.Compare{Column: col, Op: op, Values: lits})
			} else {
				preds = append(preds, queryir.FieldCompare{Field: key, Op: op, Values: lits})
			}
		}
	}

	switch len(preds) {
	case 0:
	case 1:
		sel.Filter = preds[0]
	default:
		sel.Filter = queryir.And{Predicates: preds}
	}

	if res := queryir.Validate(sel); !res.Valid {
		return queryir.Select{}, &Error{Message: strings.Join(res.Problems, "; ")}
	}
	return sel, nil
}

// splitClause finds the leftmost operator, preferring the longest one at
// that position.
func splitClause(clause string) (string, queryir.Op, []string, error) {
	for i := 0; i < len(clause); i++ {
		for _, op := range queryir.Ops {
			if !strings.HasPrefix(clause[i:], string(op)) {
				continue
			}
			key := strings.TrimSpace(clause[:i])
			if !keyPattern.MatchString(key) {
				return "", "", nil, &Error{Clause: clause, Message: fmt.Sprintf("invalid key %q", key)}
			}
			var values []string
			for _, v := range strings.Split(clause[i+len(op):], "|") {
				v = unquote(strings.TrimSpace(v))
				if v == "" {
					return "", "", nil, &Error{Clause: clause, Message: "empty value"}
				}
				values = append(values, v)
			}
			return key, op, values, nil
		}
	}
	return "", "", nil, &Error{Clause: clause, Message: "missing operator"}
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

func parseCount(clause string, op queryir.Op, values []string) (int, error) {
	if op != queryir.OpEq || len(values) != 1 {
		return 0, &Error{Clause: clause, Message: "expected a single number after ="}
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		return 0, &Error{Clause: clause, Message: fmt.Sprintf("invalid count %q", values[0])}
	}
	return n, nil
}

// literals types the values. Contains always compares text.
func literals(op queryir.Op, values []string) []ir.IRValue {
	out := make([]ir.IRValue, len(values))
	for i, v := range values {
		if op == queryir.OpContains {
			out[i] = ir.IRString(v)
		} else {
			out[i] = ir.ParseLiteral(v)
		}
	}
	return out
}
