package testutil

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDGenerator_Sequence(t *testing.T) {
	gen := NewSequentialIDGenerator(0)

	assert.Equal(t, "00000000-0000-0000-0000-000000000001", gen.NewID().String())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", gen.NewID().String())

	gen.Reset()
	assert.Equal(t, ID(0, 1), gen.NewID())
}

func TestSequentialIDGenerator_Prefix(t *testing.T) {
	a := NewSequentialIDGenerator(1)
	b := NewSequentialIDGenerator(2)

	idA, idB := a.NewID(), b.NewID()
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, "00000000-0000-0001-0000-000000000001", idA.String())
}

func TestSequentialIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequentialIDGenerator(0)
	const workers, calls = 20, 50

	var (
		mu   sync.Mutex
		seen = map[uuid.UUID]bool{}
		wg   sync.WaitGroup
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				id := gen.NewID()
				mu.Lock()
				require.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
}
