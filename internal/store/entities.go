package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/ir"
)

// LoadEntity loads one entity with the default-language values of every
// registered field.
func (s *Store) LoadEntity(ctx context.Context, id int64) (*ir.Entity, error) {
	entities, err := s.LoadEntities(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	e, ok := entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	return e, nil
}

// LoadEntities loads several entities at once. Ids that do not exist are
// missing from the result. Text fields hold a single value, multi-valued
// fields a slice in sort order.
func (s *Store) LoadEntities(ctx context.Context, ids []int64) (map[int64]*ir.Entity, error) {
	out := make(map[int64]*ir.Entity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	reg, err := s.Registry(ctx)
	if err != nil {
		return nil, err
	}

	query, args, err := s.sq.
		Select("id", "parent_id", "template", "name", "status", "sort").
		From("pages").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	for rows.Next() {
		e := &ir.Entity{Fields: make(map[string]any)}
		if err := rows.Scan(&e.ID, &e.ParentID, &e.Template, &e.Name, &e.Status, &e.Sort); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan page: %w", err)
		}
		out[e.ID] = e
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	for _, def := range reg.Fields() {
		if err := s.loadFieldValues(ctx, def, ids, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadFieldValues(ctx context.Context, def FieldDef, ids []int64, entities map[int64]*ir.Entity) error {
	query, args, err := s.sq.
		Select(field.EntityColumn, field.BaseColumn).
		From(field.TableName(def.Name)).
		Where(squirrel.Eq{field.EntityColumn: ids}).
		OrderBy(field.EntityColumn+" ASC", field.SortColumn+" ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}
	rows, err := s.queryRows(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load %s values: %w", def.Name, err)
	}

	for _, row := range rows {
		v, _ := row.Get(field.EntityColumn)
		id, _ := ir.AsInt64(v)
		e, ok := entities[id]
		if !ok {
			continue
		}
		data, _ := row.Get(field.BaseColumn)
		if !def.Type.MultiValued() {
			e.Fields[def.Name] = data
			continue
		}
		list, _ := e.Fields[def.Name].([]any)
		e.Fields[def.Name] = append(list, data)
	}
	return nil
}
