package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/sqlfinder/internal/finder"
	"github.com/roach88/sqlfinder/internal/store"
	"github.com/roach88/sqlfinder/internal/testutil"
)

// Harness runs one scenario against a freshly seeded store.
type Harness struct {
	store    *store.Store
	timer    *testutil.SequenceTimer
	prefixes *testutil.SequentialPrefixGenerator
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and seed the fixture
// 2. Build the finder from the scenario definition
// 3. Compose and materialize it
// 4. Evaluate assertions against the rows and statement
//
// Infrastructure failures (store, fixture) are returned as errors. Finder
// failures fail the result unless the scenario expects them.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	fx, err := store.LoadFixture(scenario.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	if err := st.Seed(ctx, fx); err != nil {
		return nil, fmt.Errorf("failed to seed fixture: %w", err)
	}

	h := &Harness{
		store:    st,
		timer:    testutil.NewSequenceTimer(),
		prefixes: testutil.NewSequentialPrefixGenerator(""),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	runErr := h.execute(ctx, scenario, result)
	result.Phases = h.timer.Events()

	if scenario.ExpectError != "" {
		switch {
		case runErr == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, finder succeeded", scenario.ExpectError))
		case !strings.Contains(runErr.Error(), scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected error containing %q, got: %v", scenario.ExpectError, runErr))
		}
		return result, nil
	}
	if runErr != nil {
		result.AddError(runErr.Error())
		return result, nil
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute builds, composes and materializes the scenario's finder.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, result *Result) error {
	reg, err := h.store.Registry(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	langs, err := h.store.SelectLanguage(ctx, scenario.Language)
	if err != nil {
		return fmt.Errorf("select language: %w", err)
	}

	deps := finder.Deps{
		Resolver:  h.store,
		Registry:  reg,
		Loader:    h.store,
		Executor:  h.store,
		Languages: langs,
	}
	f, err := finder.Build(scenario.Finder, deps,
		finder.WithLogger(h.logger),
		finder.WithTimer(h.timer),
		finder.WithPrefixGenerator(h.prefixes),
	)
	if err != nil {
		return fmt.Errorf("build finder: %w", err)
	}

	query, err := f.SQL(ctx)
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	result.SQL = query

	rows, err := f.Objects(ctx)
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	result.Rows = rows

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"rows", len(rows),
		"warnings", len(f.Warnings()),
	)
	return nil
}
