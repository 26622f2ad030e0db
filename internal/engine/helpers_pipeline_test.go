package engine

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
	"github.com/roach88/orgfake/internal/store"
)

// testID returns a readable deterministic id: testID(7) is
// 00000000-0000-0000-0000-000000000007.
func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

// newTestPipeline seeds an in-memory store with recs in order.
func newTestPipeline(t *testing.T, recs []*ir.Record, opts ...Option) *Pipeline {
	t.Helper()
	s, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	for _, r := range recs {
		require.NoError(t, s.Put(t.Context(), r))
	}
	return NewPipeline(s, opts...)
}

func contact(n int, firstName string) *ir.Record {
	r := ir.NewRecord("contact", testID(n))
	r.Set("contactid", ir.NewGUID(testID(n)))
	r.Set("firstname", ir.NewString(firstName))
	return r
}

func account(n int, name string) *ir.Record {
	r := ir.NewRecord("account", testID(n))
	r.Set("accountid", ir.NewGUID(testID(n)))
	r.Set("name", ir.NewString(name))
	return r
}

// names returns the string attribute attr of each record, in order.
func names(recs []*ir.Record, attr string) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, ir.Text(r.Get(attr)))
	}
	return out
}

// bogusQuery satisfies query.Query without being one of its shapes.
type bogusQuery struct {
	query.Query
}

// staticCatalog is a map-backed Catalog.
type staticCatalog struct {
	keys   map[string]string
	labels map[string]string
}

func (c staticCatalog) PrimaryKey(entity string) string {
	return c.keys[entity]
}

func (c staticCatalog) OptionLabel(entity, attribute string, value int64) (string, bool) {
	label, ok := c.labels[fmt.Sprintf("%s.%s=%d", entity, attribute, value)]
	return label, ok
}
