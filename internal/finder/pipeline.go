package finder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/ir"
)

// Objects returns the rows as structured objects, in resolved id order.
func (f *Finder) Objects(ctx context.Context) ([]*ir.Row, error) {
	return f.materialize(ctx)
}

// Maps returns the rows as plain column-to-value maps.
func (f *Finder) Maps(ctx context.Context) ([]map[string]any, error) {
	rows, err := f.materialize(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out, nil
}

// Values returns one column of every row.
func (f *Finder) Values(ctx context.Context, column string) ([]any, error) {
	if !slices.Contains(f.OutputColumns(), column) {
		return nil, fmt.Errorf("finder: unknown column %q", column)
	}
	rows, err := f.materialize(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i], _ = r.Get(column)
	}
	return out, nil
}

// Entities loads the entity of every row through the entity loader.
func (f *Finder) Entities(ctx context.Context) ([]*ir.Entity, error) {
	if f.deps.Loader == nil {
		return nil, errors.New("finder: no entity loader configured")
	}
	rows, err := f.materialize(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ir.Entity, 0, len(rows))
	for _, r := range rows {
		e, err := f.deps.Loader.LoadEntity(ctx, r.ID())
		if err != nil {
			return nil, fmt.Errorf("load entity %d: %w", r.ID(), err)
		}
		out = append(out, e)
	}
	return out, nil
}

// materialize executes the statement and runs the row pipeline:
// FilterBefore filters, computed columns, FilterAfter filters.
func (f *Finder) materialize(ctx context.Context) ([]*ir.Row, error) {
	query, err := f.SQL(ctx)
	if err != nil {
		return nil, err
	}
	if f.deps.Executor == nil {
		return nil, errors.New("finder: no query executor configured")
	}

	stop := f.timer.Start("execute")
	rows, err := f.deps.Executor.Query(ctx, query)
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		f.logger.Warn("query execution failed, returning empty result", "selector", f.selector, "error", err)
		return []*ir.Row{}, nil
	}

	defer f.timer.Start("pipeline")()

	rows = filterRows(rows, f.filtersBefore)
	if f.limit == "" {
		if err := f.compute(ctx, rows); err != nil {
			return nil, err
		}
	}
	return filterRows(rows, f.filtersAfter), nil
}

// filterRows keeps the rows every filter accepts, without gaps.
func filterRows(rows []*ir.Row, filters []Filter) []*ir.Row {
	out := make([]*ir.Row, 0, len(rows))
	for _, r := range rows {
		if keep(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

// computeTarget is one computed column of the finder or of a joined child,
// addressed by its output column and the id column of its entity.
type computeTarget struct {
	column   string
	idColumn string
	computer Computer
	loader   EntityLoader
}

func (f *Finder) computeTargets(prefix string) []computeTarget {
	var targets []computeTarget
	if f.limit != "" {
		return nil
	}
	for _, c := range f.computed {
		targets = append(targets, computeTarget{
			column:   prefix + c.name,
			idColumn: prefix + field.EntityIDColumn,
			computer: c.computer,
			loader:   f.deps.Loader,
		})
	}
	for _, j := range f.joins {
		targets = append(targets, j.child.computeTargets(prefix+j.prefix+".")...)
	}
	return targets
}

// compute fills every computed column. Each entity is loaded once per
// finder level; rows whose joined entity is missing get nil.
func (f *Finder) compute(ctx context.Context, rows []*ir.Row) error {
	targets := f.computeTargets("")
	if len(targets) == 0 || len(rows) == 0 {
		return nil
	}

	loaded, err := prefetch(ctx, rows, targets)
	if err != nil {
		return err
	}
	for _, r := range rows {
		for _, t := range targets {
			v, _ := r.Get(t.idColumn)
			id, ok := ir.AsInt64(v)
			if !ok {
				r.Set(t.column, nil)
				continue
			}
			if t.loader == nil {
				return fmt.Errorf("finder: computed column %q needs an entity loader", t.column)
			}

			cache := loaded[t.idColumn]
			if cache == nil {
				cache = make(map[int64]*ir.Entity)
				loaded[t.idColumn] = cache
			}
			e, ok := cache[id]
			if !ok {
				var err error
				e, err = t.loader.LoadEntity(ctx, id)
				if err != nil {
					return fmt.Errorf("computed column %q: load entity %d: %w", t.column, id, err)
				}
				cache[id] = e
			}
			r.Set(t.column, t.computer.Compute(e))
		}
	}
	return nil
}

// prefetch batch-loads the entities of every id column whose loader
// supports it.
func prefetch(ctx context.Context, rows []*ir.Row, targets []computeTarget) (map[string]map[int64]*ir.Entity, error) {
	loaded := make(map[string]map[int64]*ir.Entity)
	for _, t := range targets {
		if _, done := loaded[t.idColumn]; done {
			continue
		}
		batch, ok := t.loader.(BatchEntityLoader)
		if !ok {
			continue
		}
		seen := make(map[int64]bool)
		var ids []int64
		for _, r := range rows {
			v, _ := r.Get(t.idColumn)
			if id, ok := ir.AsInt64(v); ok && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		entities, err := batch.LoadEntities(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("computed column %q: load entities: %w", t.column, err)
		}
		cache := make(map[int64]*ir.Entity, len(entities))
		for id, e := range entities {
			cache[id] = e
		}
		loaded[t.idColumn] = cache
	}
	return loaded, nil
}
