// Package entityloader batches entity loads for computed columns.
package entityloader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/roach88/sqlfinder/internal/ir"
)

// Source loads several entities at once. Ids that do not exist are missing
// from the result.
type Source interface {
	LoadEntities(ctx context.Context, ids []int64) (map[int64]*ir.Entity, error)
}

// ErrNotFound is wrapped by loads of ids the source does not know.
var ErrNotFound = errors.New("entity not found")

// EntityLoader coalesces concurrent LoadEntity calls into batches and
// caches every entity it loaded. Create one per request.
type EntityLoader struct {
	Loader *dataloader.Loader
}

// Option configures an EntityLoader.
type Option func(*config)

type config struct {
	wait     time.Duration
	maxBatch int
}

// WithWait sets how long a batch collects keys before it is dispatched.
func WithWait(d time.Duration) Option {
	return func(c *config) { c.wait = d }
}

// WithMaxBatch caps the number of ids per source call. Zero means no cap.
func WithMaxBatch(n int) Option {
	return func(c *config) { c.maxBatch = n }
}

// NewEntityLoader creates a loader over src.
func NewEntityLoader(src Source, opts ...Option) *EntityLoader {
	cfg := config{wait: 5 * time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}

	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]int64, len(keys))
		for i, k := range keys {
			id, err := strconv.ParseInt(k.String(), 10, 64)
			if err != nil {
				return fail(len(keys), fmt.Errorf("invalid entity id %q: %w", k.String(), err))
			}
			ids[i] = id
		}

		entities, err := src.LoadEntities(ctx, ids)
		if err != nil {
			return fail(len(keys), err)
		}

		// Results must line up with keys.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if e, ok := entities[id]; ok {
				results[i] = &dataloader.Result{Data: e}
			} else {
				results[i] = &dataloader.Result{Error: fmt.Errorf("%w: %d", ErrNotFound, id)}
			}
		}
		return results
	}

	dlOpts := []dataloader.Option{dataloader.WithWait(cfg.wait)}
	if cfg.maxBatch > 0 {
		dlOpts = append(dlOpts, dataloader.WithBatchCapacity(cfg.maxBatch))
	}
	return &EntityLoader{Loader: dataloader.NewBatchedLoader(batchFn, dlOpts...)}
}

func fail(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func key(id int64) dataloader.Key {
	return dataloader.StringKey(strconv.FormatInt(id, 10))
}

// LoadEntity implements finder.EntityLoader.
func (l *EntityLoader) LoadEntity(ctx context.Context, id int64) (*ir.Entity, error) {
	data, err := l.Loader.Load(ctx, key(id))()
	if err != nil {
		return nil, err
	}
	return data.(*ir.Entity), nil
}

// LoadEntities implements finder.BatchEntityLoader. Ids the source does
// not know are left out of the result.
func (l *EntityLoader) LoadEntities(ctx context.Context, ids []int64) (map[int64]*ir.Entity, error) {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	data, errs := l.Loader.LoadMany(ctx, keys)()

	out := make(map[int64]*ir.Entity, len(ids))
	for i, id := range ids {
		if i < len(errs) && errs[i] != nil {
			if isNotFound(errs[i]) {
				continue
			}
			return nil, fmt.Errorf("load entity %d: %w", id, errs[i])
		}
		if e, ok := data[i].(*ir.Entity); ok {
			out[id] = e
		}
	}
	return out, nil
}

// Clear drops a cached entity, e.g. after it was written.
func (l *EntityLoader) Clear(ctx context.Context, id int64) {
	l.Loader.Clear(ctx, key(id))
}
