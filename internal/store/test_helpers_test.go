package store

import (
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/ir"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a contact with a first name.
func createTestRecord(firstName string) *ir.Record {
	r := ir.NewRecord("contact", uuid.New())
	r.Set("firstname", ir.NewString(firstName))
	return r
}
