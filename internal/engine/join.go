package engine

import (
	"context"
	"fmt"

	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/predicate"
	"github.com/roach88/orgfake/internal/query"
)

// executor evaluates one canonical expression against a source.
// Entity scans are cached for the lifetime of one query.
type executor struct {
	source RecordSource
	scans  map[string][]*ir.Record
}

func newExecutor(source RecordSource) *executor {
	return &executor{source: source, scans: map[string][]*ir.Record{}}
}

func (x *executor) scan(ctx context.Context, entity string) ([]*ir.Record, error) {
	if recs, ok := x.scans[entity]; ok {
		return recs, nil
	}
	recs, err := x.source.Scan(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", entity, err)
	}
	x.scans[entity] = recs
	return recs, nil
}

// rows returns the joined rows of expr that satisfy its top-level filter,
// in store order.
func (x *executor) rows(ctx context.Context, expr *query.Expression) ([]*row, error) {
	base, err := x.scan(ctx, expr.EntityName)
	if err != nil {
		return nil, err
	}

	rows := make([]*row, 0, len(base))
	for _, rec := range base {
		rows = append(rows, newRow(rec))
	}

	for i := range expr.Links {
		if rows, err = x.join(ctx, rows, "", &expr.Links[i]); err != nil {
			return nil, stageError(stageJoin, err)
		}
	}

	out := rows[:0]
	for _, r := range rows {
		ok, err := predicate.Evaluate(expr.Criteria, r.resolver())
		if err != nil {
			return nil, stageError(stageFilter, err)
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// join applies link (and then its nested links) to every row. parent is the
// alias the link's FromAttribute is read from; empty for the root entity.
//
// The link's own criteria filter the candidate records before matching.
// Inner links drop rows without a match; outer links keep them with the
// alias bound to nil. A row matching several candidates is repeated once
// per match, in candidate store order.
func (x *executor) join(ctx context.Context, rows []*row, parent string, link *query.Link) ([]*row, error) {
	candidates, err := x.candidates(ctx, link)
	if err != nil {
		return nil, err
	}

	var out []*row
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		left, err := r.value(parent, link.FromAttribute)
		if err != nil {
			return nil, err
		}

		matched := false
		if !ir.IsNull(left) {
			for _, c := range candidates {
				if ir.Equal(left, c.Get(link.ToAttribute)) {
					out = append(out, r.extend(link.Alias, c))
					matched = true
				}
			}
		}
		if !matched && link.JoinOperator == query.LeftOuter {
			out = append(out, r.extend(link.Alias, nil))
		}
	}

	for i := range link.Links {
		if out, err = x.join(ctx, out, link.Alias, &link.Links[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// candidates returns the link entity's records that pass the link criteria.
func (x *executor) candidates(ctx context.Context, link *query.Link) ([]*ir.Record, error) {
	recs, err := x.scan(ctx, link.ToEntity)
	if err != nil {
		return nil, err
	}
	if link.Criteria.IsEmpty() {
		return recs, nil
	}

	var out []*ir.Record
	for _, rec := range recs {
		resolve := func(alias, attribute string) (ir.Value, error) {
			if alias != "" && alias != link.Alias && alias != link.ToEntity {
				return nil, unknownAlias(alias)
			}
			return rec.Get(attribute), nil
		}
		ok, err := predicate.Evaluate(link.Criteria, resolve)
		if err != nil {
			return nil, fmt.Errorf("link %s criteria: %w", link.Alias, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
