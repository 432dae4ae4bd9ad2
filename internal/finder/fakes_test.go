package finder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/sqlfinder/internal/field"
	"github.com/roach88/sqlfinder/internal/ir"
)

// fakeResolver maps selectors to fixed id lists and counts calls.
type fakeResolver struct {
	ids   map[string][]int64
	calls []string
}

func (r *fakeResolver) ResolveIDs(_ context.Context, selector string) ([]int64, error) {
	r.calls = append(r.calls, selector)
	ids, ok := r.ids[selector]
	if !ok {
		return nil, fmt.Errorf("unexpected selector %q", selector)
	}
	return ids, nil
}

// fakeRegistry classifies from a fixed table.
type fakeRegistry struct {
	kinds     map[string]field.Classification
	repeaters map[string][]string
}

func (r fakeRegistry) Classify(name string) (field.Classification, error) {
	c, ok := r.kinds[name]
	if !ok {
		return field.Classification{}, fmt.Errorf("field %q not found", name)
	}
	return c, nil
}

func (r fakeRegistry) RepeaterFields(name string) ([]string, error) {
	subs, ok := r.repeaters[name]
	if !ok {
		return nil, fmt.Errorf("repeater %q not found", name)
	}
	return subs, nil
}

// fakeExecutor returns prepared rows, or err, and records every query.
type fakeExecutor struct {
	columns []string
	rows    [][]any
	err     error
	queries []string
}

func (e *fakeExecutor) Query(_ context.Context, query string) ([]*ir.Row, error) {
	e.queries = append(e.queries, query)
	if e.err != nil {
		return nil, e.err
	}
	out := make([]*ir.Row, len(e.rows))
	for i, vals := range e.rows {
		out[i] = ir.NewRow(e.columns, vals)
	}
	return out, nil
}

// fakeLoader serves entities from a map and counts loads per id.
type fakeLoader struct {
	entities map[int64]*ir.Entity
	loads    map[int64]int
}

func newFakeLoader(entities ...*ir.Entity) *fakeLoader {
	l := &fakeLoader{entities: make(map[int64]*ir.Entity), loads: make(map[int64]int)}
	for _, e := range entities {
		l.entities[e.ID] = e
	}
	return l
}

func (l *fakeLoader) LoadEntity(_ context.Context, id int64) (*ir.Entity, error) {
	l.loads[id]++
	e, ok := l.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %d not found", id)
	}
	return e, nil
}

type fakeLanguages struct {
	current, def field.Language
}

func (l fakeLanguages) CurrentLanguage(context.Context) (field.Language, error) { return l.current, nil }
func (l fakeLanguages) DefaultLanguage(context.Context) (field.Language, error) { return l.def, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps(t *testing.T, ids map[string][]int64) (Deps, *fakeResolver) {
	t.Helper()
	r := &fakeResolver{ids: ids}
	return Deps{
		Resolver: r,
		Registry: fakeRegistry{
			kinds: map[string]field.Classification{
				"title":    {Kind: field.Text, MultiLanguage: true},
				"age":      {Kind: field.Text},
				"images":   {Kind: field.File},
				"author":   {Kind: field.Page},
				"name":     {Kind: field.PagesTable},
				"template": {Kind: field.PagesTable},
				"blocks":   {Kind: field.Repeater},
				"headline": {Kind: field.Text, MultiLanguage: true},
				"body":     {Kind: field.Text},
			},
			repeaters: map[string][]string{"blocks": {"headline", "body"}},
		},
	}, r
}

func newTestFinder(t *testing.T, selector string, deps Deps, opts ...Option) *Finder {
	t.Helper()
	return New(selector, deps, append([]Option{WithLogger(discardLogger())}, opts...)...)
}

func entity(id int64, fields map[string]any) *ir.Entity {
	return &ir.Entity{ID: id, Template: "person", Fields: fields}
}
