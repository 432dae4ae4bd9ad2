package testutil

import (
	"strconv"
	"sync"
)

// SequentialPrefixGenerator names unnamed joins "j1", "j2", ... so composed
// statements are reproducible.
//
// Unlike finder.FixedPrefixGenerator it never runs out of prefixes.
//
// Thread-safety: safe for concurrent use.
type SequentialPrefixGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialPrefixGenerator creates a generator. An empty base uses "j".
func NewSequentialPrefixGenerator(base string) *SequentialPrefixGenerator {
	if base == "" {
		base = "j"
	}
	return &SequentialPrefixGenerator{prefix: base}
}

// Generate returns the next prefix.
func (g *SequentialPrefixGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + strconv.Itoa(g.n)
}
