package engine

import (
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/predicate"
)

// row is one joined result row: a root record plus the record each link
// matched, keyed by link alias. An outer link with no match maps its alias
// to nil, so every attribute read through that alias is null.
type row struct {
	base  *ir.Record
	links map[string]*ir.Record
}

func newRow(base *ir.Record) *row {
	return &row{base: base, links: map[string]*ir.Record{}}
}

// extend copies the row and binds alias to rec.
func (r *row) extend(alias string, rec *ir.Record) *row {
	links := make(map[string]*ir.Record, len(r.links)+1)
	for k, v := range r.links {
		links[k] = v
	}
	links[alias] = rec
	return &row{base: r.base, links: links}
}

// record returns the record bound to alias. The empty alias and the root
// entity name select the root record.
func (r *row) record(alias string) (*ir.Record, error) {
	if alias == "" || alias == r.base.LogicalName {
		return r.base, nil
	}
	rec, ok := r.links[alias]
	if !ok {
		return nil, unknownAlias(alias)
	}
	return rec, nil
}

// value reads alias.attribute; a nil record (outer miss) reads as null.
func (r *row) value(alias, attribute string) (ir.Value, error) {
	rec, err := r.record(alias)
	if err != nil {
		return nil, err
	}
	return rec.Get(attribute), nil
}

func (r *row) resolver() predicate.Resolver {
	return r.value
}
