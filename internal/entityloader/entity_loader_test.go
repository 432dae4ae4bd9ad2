package entityloader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlfinder/internal/ir"
)

type fakeSource struct {
	mu       sync.Mutex
	entities map[int64]*ir.Entity
	calls    [][]int64
	err      error
}

func (s *fakeSource) LoadEntities(_ context.Context, ids []int64) (map[int64]*ir.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, append([]int64(nil), ids...))
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64]*ir.Entity)
	for _, id := range ids {
		if e, ok := s.entities[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func newSource(ids ...int64) *fakeSource {
	s := &fakeSource{entities: make(map[int64]*ir.Entity)}
	for _, id := range ids {
		s.entities[id] = &ir.Entity{ID: id, Name: "e"}
	}
	return s
}

func TestEntityLoader_LoadEntity(t *testing.T) {
	src := newSource(1, 2)
	l := NewEntityLoader(src, WithWait(time.Millisecond))

	e, err := l.LoadEntity(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.ID)

	_, err = l.LoadEntity(context.Background(), 9)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEntityLoader_CachesEntities(t *testing.T) {
	src := newSource(1)
	l := NewEntityLoader(src, WithWait(time.Millisecond))
	ctx := context.Background()

	_, err := l.LoadEntity(ctx, 1)
	require.NoError(t, err)
	_, err = l.LoadEntity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, src.calls, 1)

	l.Clear(ctx, 1)
	_, err = l.LoadEntity(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, src.calls, 2)
}

func TestEntityLoader_LoadEntitiesBatches(t *testing.T) {
	src := newSource(1, 2, 3)
	l := NewEntityLoader(src, WithWait(20*time.Millisecond))

	got, err := l.LoadEntities(context.Background(), []int64{3, 1, 7, 2})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(3), got[3].ID)
	assert.NotContains(t, got, int64(7))

	require.Len(t, src.calls, 1)
	assert.ElementsMatch(t, []int64{1, 2, 3, 7}, src.calls[0])
}

func TestEntityLoader_MaxBatch(t *testing.T) {
	src := newSource(1, 2, 3, 4)
	l := NewEntityLoader(src, WithWait(20*time.Millisecond), WithMaxBatch(2))

	got, err := l.LoadEntities(context.Background(), []int64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, call := range src.calls {
		assert.LessOrEqual(t, len(call), 2)
	}
}

func TestEntityLoader_SourceError(t *testing.T) {
	src := newSource()
	src.err = errors.New("database is locked")
	l := NewEntityLoader(src, WithWait(time.Millisecond))

	_, err := l.LoadEntities(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	_, err = l.LoadEntity(context.Background(), 2)
	assert.ErrorContains(t, err, "database is locked")
}
