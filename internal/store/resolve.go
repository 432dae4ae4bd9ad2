package store

import (
	"context"
	"fmt"

	"github.com/roach88/sqlfinder/internal/queryir"
	"github.com/roach88/sqlfinder/internal/querysql"
	"github.com/roach88/sqlfinder/internal/selector"
)

// ResolveIDs implements finder.Resolver: it parses a selector and returns
// the ids of the matching entities in selector order.
func (s *Store) ResolveIDs(ctx context.Context, sel string) ([]int64, error) {
	query, err := selector.Parse(sel)
	if err != nil {
		return nil, err
	}

	reg, err := s.Registry(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range fieldNames(query) {
		if _, ok := reg.Lookup(name); !ok {
			return nil, fmt.Errorf("selector %q: %w: %s", sel, ErrUnknownField, name)
		}
	}

	sqlStr, params, err := querysql.NewSQLCompiler().Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}
	return s.queryIDs(ctx, sqlStr, params...)
}

// fieldNames lists the fields a query reads besides the entity table.
func fieldNames(q queryir.Select) []string {
	var names []string
	var walk func(p queryir.Predicate)
	walk = func(p queryir.Predicate) {
		switch pred := p.(type) {
		case queryir.FieldCompare:
			names = append(names, pred.Field)
		case queryir.And:
			for _, sub := range pred.Predicates {
				walk(sub)
			}
		}
	}
	walk(q.Filter)
	for _, k := range q.Order {
		if !queryir.IsEntityColumn(k.Field) {
			names = append(names, k.Field)
		}
	}
	return names
}
