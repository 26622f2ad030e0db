package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
)

// decimalContext matches the 28 significant digits of the emulated
// service's decimal type.
var decimalContext = apd.BaseContext.WithPrecision(28)

// group accumulates the rows sharing one group-by tuple.
type group struct {
	keys []ir.Value
	rows []*ir.Record
}

// Apply groups rows and computes the plan's aggregates.
//
// Each output row is a record of entity with a nil ID. Group-by values and
// aggregate results are stored as ir.Aliased under their output alias.
// Without group-by columns every row falls into a single group, and an
// empty input still yields one row (count 0, other aggregates null).
func Apply(entity string, rows []*ir.Record, plan *Plan) ([]*ir.Record, error) {
	if plan == nil {
		return rows, nil
	}

	groups := map[string]*group{}
	var order []string

	for _, row := range rows {
		keys := make([]ir.Value, len(plan.Groups))
		for i, g := range plan.Groups {
			v, err := groupValue(row.Get(g.Attribute), g.DateGrouping)
			if err != nil {
				return nil, err
			}
			keys[i] = v
		}
		key, err := ir.GroupKey(keys)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		if g, ok := groups[key]; ok {
			g.rows = append(g.rows, row)
			continue
		}
		groups[key] = &group{keys: keys, rows: []*ir.Record{row}}
		order = append(order, key)
	}

	if len(order) == 0 && len(plan.Groups) == 0 {
		groups[""] = &group{}
		order = append(order, "")
	}

	out := make([]*ir.Record, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rec := ir.NewRecord(entity, uuid.Nil)
		for i, gb := range plan.Groups {
			name := outputName(gb.Alias, gb.Attribute)
			rec.Set(name, ir.NewAliased(name, gb.Attribute, ir.Unwrap(g.keys[i])))
		}
		for _, col := range plan.Columns {
			v, err := compute(col, g.rows)
			if err != nil {
				return nil, err
			}
			name := outputName(col.Alias, col.Attribute)
			rec.Set(name, ir.NewAliased(name, col.Attribute, v))
		}
		out = append(out, rec)
	}

	sortGroups(out, plan.Orders)
	return out, nil
}

func compute(col Column, rows []*ir.Record) (ir.Value, error) {
	if col.Function == Count {
		return ir.NewInt(int64(len(rows))), nil
	}

	values := make([]ir.Value, 0, len(rows))
	seen := map[string]bool{}
	for _, row := range rows {
		v := ir.Unwrap(row.Get(col.Attribute))
		if ir.IsNull(v) {
			continue
		}
		if col.Distinct {
			key, err := ir.GroupKey([]ir.Value{v})
			if err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", col.Alias, err)
			}
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		values = append(values, v)
	}

	switch col.Function {
	case CountColumn:
		return ir.NewInt(int64(len(values))), nil
	case Sum, Avg:
		if len(values) == 0 {
			return ir.Null{}, nil
		}
		total := new(apd.Decimal)
		for _, v := range values {
			d, err := numeric(col, v)
			if err != nil {
				return nil, err
			}
			if _, err := decimalContext.Add(total, total, d); err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", col.Alias, err)
			}
		}
		if col.Function == Sum {
			return ir.DecimalFromApd(total), nil
		}
		avg := new(apd.Decimal)
		if _, err := decimalContext.Quo(avg, total, apd.New(int64(len(values)), 0)); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", col.Alias, err)
		}
		return ir.DecimalFromApd(avg), nil
	case Min, Max:
		var best ir.Value
		for _, v := range values {
			if best == nil {
				best = v
				continue
			}
			cmp, ok := ir.Compare(v, best)
			if !ok {
				return nil, fault.Newf(fault.CodeMalformedQuery,
					"aggregate %s: cannot compare %s with %s", col.Function, ir.TypeName(v), ir.TypeName(best))
			}
			if (col.Function == Min && cmp < 0) || (col.Function == Max && cmp > 0) {
				best = v
			}
		}
		if best == nil {
			return ir.Null{}, nil
		}
		return best, nil
	default:
		return nil, fault.Newf(fault.CodeMalformedQuery, "unknown aggregate %q", col.Function)
	}
}

// numeric widens a summable value to a decimal.
func numeric(col Column, v ir.Value) (*apd.Decimal, error) {
	switch val := v.(type) {
	case ir.Int:
		return apd.New(int64(val), 0), nil
	case ir.Decimal:
		return val.Apd(), nil
	default:
		return nil, fault.Newf(fault.CodeMalformedQuery,
			"aggregate %s on %q: %s values cannot be summed", col.Function, col.Attribute, ir.TypeName(v))
	}
}

// groupValue applies date grouping to a group-by value.
func groupValue(v ir.Value, grouping DateGrouping) (ir.Value, error) {
	v = ir.Unwrap(v)
	if grouping == NoDateGrouping || ir.IsNull(v) {
		return v, nil
	}
	dt, ok := v.(ir.DateTime)
	if !ok {
		return nil, fault.Newf(fault.CodeMalformedQuery,
			"date grouping %s applied to %s value", grouping, ir.TypeName(v))
	}
	t := dt.Time
	switch grouping {
	case Year:
		return ir.NewInt(int64(t.Year())), nil
	case Quarter:
		return ir.NewInt(int64((t.Month()-1)/3 + 1)), nil
	case Month:
		return ir.NewInt(int64(t.Month())), nil
	case Week:
		_, week := t.ISOWeek()
		return ir.NewInt(int64(week)), nil
	case Day:
		return ir.NewDateTime(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)), nil
	}
	return v, nil
}

// sortGroups applies the plan's orders (stable, nulls first ascending).
func sortGroups(rows []*ir.Record, orders []Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			cmp, ok := ir.Compare(rows[i].Get(o.Alias), rows[j].Get(o.Alias))
			if !ok || cmp == 0 {
				continue
			}
			if o.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}
