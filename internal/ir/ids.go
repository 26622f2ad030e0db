package ir

import "github.com/google/uuid"

// IDGenerator issues record identifiers.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDGenerator
// (tests).
type IDGenerator interface {
	NewID() uuid.UUID
}

// UUIDv7Generator issues time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a fresh UUIDv7. Panics if the random source fails.
func (UUIDv7Generator) NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
