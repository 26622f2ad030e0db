package predicate

import (
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// Resolver returns the value a condition's (alias, attribute) refers to on
// the row being evaluated. alias is empty for the filter's own entity.
type Resolver func(alias, attribute string) (ir.Value, error)

// Evaluate reports whether a row satisfies a filter tree.
// An empty group matches every row.
func Evaluate(f query.Filter, resolve Resolver) (bool, error) {
	if f.IsEmpty() {
		return true, nil
	}

	or := f.Type == query.Or
	for _, c := range f.Conditions {
		alias, attr := c.Target()
		v, err := resolve(alias, attr)
		if err != nil {
			return false, err
		}
		ok, err := Match(c.Operator, v, c.Values)
		if err != nil {
			return false, err
		}
		if ok == or {
			return or, nil
		}
	}
	for _, sub := range f.Filters {
		if sub.IsEmpty() {
			continue
		}
		ok, err := Evaluate(sub, resolve)
		if err != nil {
			return false, err
		}
		if ok == or {
			return or, nil
		}
	}
	return !or, nil
}
