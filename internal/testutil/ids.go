package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDGenerator hands out predictable record ids for tests and
// golden snapshots. The n-th id (starting at 1) has n in its low 8 bytes:
//
//	00000000-0000-0000-0000-000000000001
//
// A non-zero prefix fills the high 8 bytes so two generators can be told
// apart in the same store.
//
// Thread-safety: safe for concurrent use.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix uint64
	n      uint64
}

// NewSequentialIDGenerator creates a generator whose first id ends in 1.
func NewSequentialIDGenerator(prefix uint64) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

// NewID returns the next id.
func (g *SequentialIDGenerator) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return ID(g.prefix, g.n)
}

// Reset restarts the sequence.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// ID builds the id a SequentialIDGenerator with the given prefix returns
// on its n-th call.
func ID(prefix, n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], prefix)
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}
