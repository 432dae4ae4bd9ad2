package finder

import (
	"log/slog"
	"sync"
	"time"
)

// Timer is the instrumentation hook. Start begins a named measurement and
// returns the function that ends it.
//
// Finders measure "resolve", "compose", "execute" and "pipeline".
type Timer interface {
	Start(name string) (stop func())
}

type noopTimer struct{}

func (noopTimer) Start(string) func() { return func() {} }

// LogTimer logs each measurement at debug level.
type LogTimer struct {
	Logger *slog.Logger
}

// Start implements Timer.
func (t LogTimer) Start(name string) func() {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	started := time.Now()
	return func() {
		logger.Debug("finder timing", "name", name, "elapsed", time.Since(started))
	}
}

// Timing is one finished measurement.
type Timing struct {
	Name    string
	Elapsed time.Duration
}

// TimingRecorder keeps every measurement in memory.
type TimingRecorder struct {
	mu      sync.Mutex
	timings []Timing
}

// Start implements Timer.
func (r *TimingRecorder) Start(name string) func() {
	started := time.Now()
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.timings = append(r.timings, Timing{Name: name, Elapsed: time.Since(started)})
	}
}

// Timings returns the measurements in completion order.
func (r *TimingRecorder) Timings() []Timing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Timing, len(r.timings))
	copy(out, r.timings)
	return out
}

// Names returns the names of the measurements in completion order.
func (r *TimingRecorder) Names() []string {
	timings := r.Timings()
	names := make([]string, len(timings))
	for i, t := range timings {
		names[i] = t.Name
	}
	return names
}
