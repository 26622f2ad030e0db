// Package query defines the query descriptors accepted by the emulated
// service and the canonical descriptor the engine executes.
//
// ARCHITECTURE:
//
// Three input shapes implement the sealed Query interface:
//
//	*Expression   structured descriptor (also the canonical form)
//	*Fetch        XML query dialect text
//	*ByAttribute  attribute-equality descriptor
//
// The engine's normalizer dispatches once on the shape and produces an
// *Expression; nothing downstream branches on the input shape again.
//
// CANONICAL DESCRIPTOR:
//
//	Expression
//	  ├── Columns     ColumnSet (all / explicit list / none)
//	  ├── Criteria    Filter tree (And/Or groups, Condition leaves)
//	  ├── Orders      []Order
//	  ├── Links       []Link (a tree: links carry links)
//	  ├── PageInfo    page number, page size, total-count flag
//	  ├── TopCount    optional truncation applied before paging
//	  └── Distinct
//
// A Link's Criteria pre-filters the linked entity's candidate records. A
// top-level Condition that names a link alias (EntityAlias, or the
// "alias.attribute" form) is evaluated after the join.
//
// SEALED INTERFACES:
//
// Query is sealed with an unexported marker method so the normalizer can
// switch exhaustively:
//
//	switch q := q.(type) {
//	case *Expression:
//	case *Fetch:
//	case *ByAttribute:
//	default:
//	    // unsupported query kind
//	}
//
// Literal operands are ir.Value (no floats). Operands parsed from the XML
// dialect stay ir.String and are coerced against the attribute's runtime
// type at evaluation time.
package query
