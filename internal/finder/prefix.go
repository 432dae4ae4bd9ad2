package finder

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// PrefixGenerator names joins that were not given a prefix.
// Implemented by UUIDPrefixGenerator (production) and FixedPrefixGenerator (tests).
type PrefixGenerator interface {
	Generate() string
}

// UUIDPrefixGenerator generates prefixes from time-sortable UUIDv7 values.
//
// Format: "j" followed by 32 hex digits, which is a valid field name.
type UUIDPrefixGenerator struct{}

// Generate creates a new prefix.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDPrefixGenerator) Generate() string {
	return "j" + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// FixedPrefixGenerator returns predetermined prefixes for testing.
type FixedPrefixGenerator struct {
	mu       sync.Mutex
	prefixes []string
	idx      int
}

// NewFixedPrefixGenerator creates a generator that returns prefixes in order.
func NewFixedPrefixGenerator(prefixes ...string) *FixedPrefixGenerator {
	return &FixedPrefixGenerator{prefixes: prefixes}
}

// Generate returns the next predetermined prefix.
//
// Panics if all prefixes have been consumed, to catch tests that join
// more finders than they expect.
func (g *FixedPrefixGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.prefixes) {
		panic("FixedPrefixGenerator: all prefixes exhausted")
	}
	p := g.prefixes[g.idx]
	g.idx++
	return p
}
