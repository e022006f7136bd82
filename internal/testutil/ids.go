// Package testutil provides deterministic document id generators for tests
// and scenario runs.
package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator generates "<prefix><n>" ids for n = 1, 2, 3, ...
//
// A scenario seeded through the same generator gets the same ids on every
// run, which keeps golden snapshots stable.
//
// Thread-safety: all methods are safe for concurrent use.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceIDGenerator creates a generator whose first id is prefix+"1".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s%d", g.prefix, g.seq)
}

// Count returns how many ids have been generated.
func (g *SequenceIDGenerator) Count() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence; the next id is prefix+"1" again.
func (g *SequenceIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedIDGenerator returns predetermined ids in order.
//
//	gen := NewFixedIDGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all ids exhausted
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator over ids.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next id. It panics once every id has been used, so a
// test inserting more documents than it planned for fails loudly.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("FixedIDGenerator: all %d ids exhausted", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
