package query

import "github.com/roach88/orgfake/internal/ir"

// Clone returns a deep copy that shares no slices or pointers with e.
// Operand values are immutable and are shared.
func (e *Expression) Clone() *Expression {
	if e == nil {
		return nil
	}
	out := &Expression{
		EntityName: e.EntityName,
		Columns:    e.Columns.clone(),
		Criteria:   e.Criteria.clone(),
		Orders:     cloneOrders(e.Orders),
		Links:      cloneLinks(e.Links),
		Distinct:   e.Distinct,
	}
	if e.PageInfo != nil {
		page := *e.PageInfo
		out.PageInfo = &page
	}
	if e.TopCount != nil {
		top := *e.TopCount
		out.TopCount = &top
	}
	return out
}

func (c ColumnSet) clone() ColumnSet {
	out := ColumnSet{All: c.All}
	if c.Columns != nil {
		out.Columns = append([]string{}, c.Columns...)
	}
	return out
}

func (f Filter) clone() Filter {
	out := Filter{Type: f.Type}
	if f.Conditions != nil {
		out.Conditions = make([]Condition, len(f.Conditions))
		for i, c := range f.Conditions {
			out.Conditions[i] = c
			if c.Values != nil {
				out.Conditions[i].Values = append([]ir.Value{}, c.Values...)
			}
		}
	}
	if f.Filters != nil {
		out.Filters = make([]Filter, len(f.Filters))
		for i, sub := range f.Filters {
			out.Filters[i] = sub.clone()
		}
	}
	return out
}

func cloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	return append([]Order{}, orders...)
}

func cloneLinks(links []Link) []Link {
	if links == nil {
		return nil
	}
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l
		out[i].Columns = l.Columns.clone()
		out[i].Criteria = l.Criteria.clone()
		out[i].Links = cloneLinks(l.Links)
		out[i].Orders = cloneOrders(l.Orders)
	}
	return out
}
