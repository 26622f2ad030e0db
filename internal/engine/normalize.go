package engine

import (
	"github.com/roach88/orgfake/internal/aggregate"
	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/fetchxml"
	"github.com/roach88/orgfake/internal/query"
)

// Normalized is a query in canonical form.
type Normalized struct {
	// Expression is owned by the caller of Normalize; it never aliases the
	// input descriptor.
	Expression *query.Expression

	// EntityName is the root entity.
	EntityName string

	// Aggregation is non-nil when an XML query declared aggregate="true".
	Aggregation *aggregate.Plan
}

// Normalize converts any accepted descriptor shape into canonical form.
//
// Structured descriptors are deep-copied, XML documents are parsed and
// attribute-equality descriptors become a conjunction of equality
// conditions. Every link is given a default alias when it has none and the
// result is validated. Other shapes fail with UNSUPPORTED_QUERY_KIND.
func Normalize(q query.Query) (*Normalized, error) {
	var n *Normalized

	switch v := q.(type) {
	case *query.Expression:
		if v == nil {
			return nil, fault.New(fault.CodeMalformedQuery, "query expression is nil")
		}
		n = &Normalized{Expression: v.Clone()}

	case *query.Fetch:
		if v == nil {
			return nil, fault.New(fault.CodeMalformedQuery, "fetch query is nil")
		}
		doc, err := fetchxml.Parse(v.XML)
		if err != nil {
			return nil, err
		}
		n = &Normalized{Expression: doc.Expression()}
		if doc.HasAggregations() {
			n.Aggregation = doc.Aggregation()
		}

	case *query.ByAttribute:
		if v == nil {
			return nil, fault.New(fault.CodeMalformedQuery, "attribute query is nil")
		}
		expr, err := fromAttributes(v)
		if err != nil {
			return nil, err
		}
		n = &Normalized{Expression: expr}

	default:
		return nil, fault.UnsupportedQueryKind(q)
	}

	n.Expression.AssignDefaultAliases()
	if result := query.Validate(n.Expression); !result.Valid {
		return nil, invalidExpression(result.Errors)
	}
	n.EntityName = n.Expression.EntityName
	return n, nil
}

// fromAttributes builds Attributes[i] == Values[i] for every pair.
// Orders, paging and top count carry over unchanged.
func fromAttributes(b *query.ByAttribute) (*query.Expression, error) {
	if len(b.Attributes) != len(b.Values) {
		return nil, attributeValueMismatch(len(b.Attributes), len(b.Values))
	}

	// Build from a copy so the caller's slices are never shared.
	src := &query.Expression{
		EntityName: b.EntityName,
		Columns:    b.Columns,
		Orders:     b.Orders,
		PageInfo:   b.PageInfo,
		TopCount:   b.TopCount,
		Criteria:   query.Filter{Type: query.And},
	}
	for i, attr := range b.Attributes {
		src.Criteria.AddCondition(attr, query.Equal, b.Values[i])
	}
	return src.Clone(), nil
}
