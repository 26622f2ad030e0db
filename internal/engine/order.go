package engine

import (
	"sort"

	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// sortKeys collects the expression's orders followed by each link's orders
// in depth-first declaration order.
func sortKeys(expr *query.Expression) []query.Order {
	keys := append([]query.Order{}, expr.Orders...)
	expr.WalkLinks(func(_, l *query.Link) {
		for _, o := range l.Orders {
			if o.EntityAlias == "" {
				o.EntityAlias = l.Alias
			}
			keys = append(keys, o)
		}
	})
	return keys
}

// sortRows orders rows by keys. The sort is stable, so rows that tie on
// every key keep store order. Nulls sort first ascending and last
// descending. Values of mismatched types fall back to comparing their text.
func sortRows(rows []*row, keys []query.Order) error {
	if len(keys) == 0 || len(rows) < 2 {
		return nil
	}

	// Resolve every key up front so the comparator cannot fail.
	values := make(map[*row][]ir.Value, len(rows))
	for _, r := range rows {
		vals := make([]ir.Value, len(keys))
		for i, k := range keys {
			v, err := r.value(k.EntityAlias, k.Attribute)
			if err != nil {
				return stageError(stageSort, err)
			}
			vals[i] = v
		}
		values[r] = vals
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := values[rows[i]], values[rows[j]]
		for k, key := range keys {
			cmp := compareForSort(a[k], b[k])
			if cmp == 0 {
				continue
			}
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return nil
}

func compareForSort(a, b ir.Value) int {
	if cmp, ok := ir.Compare(a, b); ok {
		return cmp
	}
	return ir.CompareOrdinal(ir.Text(a), ir.Text(b))
}
