package testutil

import (
	"fmt"
	"sync"
)

// PhaseEvent is one start or stop recorded by a SequenceTimer.
type PhaseEvent struct {
	Seq   int64  `json:"seq"`
	Name  string `json:"name"`
	Event string `json:"event"` // "start" or "stop"
}

func (e PhaseEvent) String() string {
	return fmt.Sprintf("%d:%s:%s", e.Seq, e.Name, e.Event)
}

// SequenceTimer is a finder timer that stamps events with a logical clock
// instead of wall time, so the same run always records the same events.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceTimer struct {
	mu     sync.Mutex
	seq    int64
	events []PhaseEvent
}

// NewSequenceTimer creates a timer whose first event has seq 1.
func NewSequenceTimer() *SequenceTimer {
	return &SequenceTimer{}
}

// Start records the start of a phase and returns the function recording
// its stop.
func (t *SequenceTimer) Start(name string) func() {
	t.record(name, "start")
	var once sync.Once
	return func() {
		once.Do(func() { t.record(name, "stop") })
	}
}

func (t *SequenceTimer) record(name, event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.events = append(t.events, PhaseEvent{Seq: t.seq, Name: name, Event: event})
}

// Events returns a copy of the recorded events in order.
func (t *SequenceTimer) Events() []PhaseEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PhaseEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Completed returns the names of finished phases in completion order.
func (t *SequenceTimer) Completed() []string {
	var names []string
	for _, e := range t.Events() {
		if e.Event == "stop" {
			names = append(names, e.Name)
		}
	}
	return names
}

// Reset clears the events. After Reset the next event has seq 1 again.
func (t *SequenceTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq = 0
	t.events = nil
}
