package query

import (
	"fmt"
	"strings"

	"github.com/roach88/orgfake/internal/ir"
)

// Query is a query descriptor in one of the accepted input shapes.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryShape() // Marker method - seals interface to this package
}

// Operator is a condition operator. Values are the XML dialect names.
type Operator string

const (
	Equal            Operator = "eq"
	NotEqual         Operator = "ne"
	LessThan         Operator = "lt"
	LessEqual        Operator = "le"
	GreaterThan      Operator = "gt"
	GreaterEqual     Operator = "ge"
	Like             Operator = "like"
	NotLike          Operator = "not-like"
	BeginsWith       Operator = "begins-with"
	DoesNotBeginWith Operator = "not-begin-with"
	EndsWith         Operator = "ends-with"
	DoesNotEndWith   Operator = "not-end-with"
	Contains         Operator = "contains"
	DoesNotContain   Operator = "not-contain"
	In               Operator = "in"
	NotIn            Operator = "not-in"
	Null             Operator = "null"
	NotNull          Operator = "not-null"
	Between          Operator = "between"
	NotBetween       Operator = "not-between"
)

var operators = map[string]Operator{
	"eq":             Equal,
	"ne":             NotEqual,
	"neq":            NotEqual,
	"lt":             LessThan,
	"le":             LessEqual,
	"gt":             GreaterThan,
	"ge":             GreaterEqual,
	"like":           Like,
	"not-like":       NotLike,
	"begins-with":    BeginsWith,
	"not-begin-with": DoesNotBeginWith,
	"ends-with":      EndsWith,
	"not-end-with":   DoesNotEndWith,
	"contains":       Contains,
	"not-contain":    DoesNotContain,
	"in":             In,
	"not-in":         NotIn,
	"null":           Null,
	"not-null":       NotNull,
	"between":        Between,
	"not-between":    NotBetween,
}

// ParseOperator resolves an XML dialect operator name (case-insensitive).
func ParseOperator(name string) (Operator, bool) {
	op, ok := operators[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// Arity describes how many operand values an operator takes.
// max is -1 for "one or more".
func (o Operator) Arity() (min, max int) {
	switch o {
	case Null, NotNull:
		return 0, 0
	case In, NotIn:
		return 1, -1
	case Between, NotBetween:
		return 2, 2
	default:
		return 1, 1
	}
}

// Ordering reports whether the operator compares by natural order.
func (o Operator) Ordering() bool {
	switch o {
	case LessThan, LessEqual, GreaterThan, GreaterEqual, Between, NotBetween:
		return true
	default:
		return false
	}
}

// LogicalOperator joins the members of a filter group.
type LogicalOperator string

const (
	And LogicalOperator = "and"
	Or  LogicalOperator = "or"
)

// JoinOperator is the kind of a link.
type JoinOperator string

const (
	Inner     JoinOperator = "inner"
	LeftOuter JoinOperator = "outer"
)

// ColumnSet selects the attributes returned for an entity.
// The zero value selects no attributes (only the record id).
type ColumnSet struct {
	All     bool
	Columns []string
}

// AllColumns selects every attribute.
func AllColumns() ColumnSet {
	return ColumnSet{All: true}
}

// Columns selects an explicit attribute list.
func Columns(names ...string) ColumnSet {
	return ColumnSet{Columns: names}
}

// Includes reports whether the column set selects the attribute.
func (c ColumnSet) Includes(attribute string) bool {
	if c.All {
		return true
	}
	for _, col := range c.Columns {
		if col == attribute {
			return true
		}
	}
	return false
}

// Condition is a filter leaf: attribute, operator and operand values.
//
// Attribute may use the "alias.attribute" form to reference a linked entity;
// EntityAlias takes precedence when set.
type Condition struct {
	EntityAlias string
	Attribute   string
	Operator    Operator
	Values      []ir.Value
}

// Target returns the alias and attribute the condition references.
// The alias is empty when the condition targets the filter's own entity.
func (c Condition) Target() (alias, attribute string) {
	if c.EntityAlias != "" {
		return c.EntityAlias, c.Attribute
	}
	if i := strings.IndexByte(c.Attribute, '.'); i > 0 {
		return c.Attribute[:i], c.Attribute[i+1:]
	}
	return "", c.Attribute
}

// Filter is a group of conditions and nested groups joined by Type.
// An empty filter matches every row.
type Filter struct {
	Type       LogicalOperator
	Conditions []Condition
	Filters    []Filter
}

// IsEmpty reports whether the filter has no conditions at any depth.
func (f Filter) IsEmpty() bool {
	if len(f.Conditions) > 0 {
		return false
	}
	for _, sub := range f.Filters {
		if !sub.IsEmpty() {
			return false
		}
	}
	return true
}

// AddCondition appends a condition to the group.
func (f *Filter) AddCondition(attribute string, op Operator, values ...ir.Value) *Filter {
	f.Conditions = append(f.Conditions, Condition{Attribute: attribute, Operator: op, Values: values})
	return f
}

// AddAliasCondition appends a condition on a linked entity's attribute.
func (f *Filter) AddAliasCondition(alias, attribute string, op Operator, values ...ir.Value) *Filter {
	f.Conditions = append(f.Conditions, Condition{EntityAlias: alias, Attribute: attribute, Operator: op, Values: values})
	return f
}

// AddFilter appends a nested group and returns it for further building.
// The returned pointer is invalidated by the next AddFilter on f.
func (f *Filter) AddFilter(t LogicalOperator) *Filter {
	f.Filters = append(f.Filters, Filter{Type: t})
	return &f.Filters[len(f.Filters)-1]
}

// Order is a sort key. EntityAlias names a link when the key is a linked
// attribute.
type Order struct {
	EntityAlias string
	Attribute   string
	Descending  bool
}

// Link joins a related entity: FromEntity.FromAttribute = ToEntity.ToAttribute.
type Link struct {
	FromEntity    string
	FromAttribute string
	ToEntity      string
	ToAttribute   string
	JoinOperator  JoinOperator
	Alias         string
	Columns       ColumnSet
	Criteria      Filter
	Links         []Link
	Orders        []Order
}

// AddLink appends a nested link and returns it for further building.
// The returned pointer is invalidated by the next AddLink on l.
func (l *Link) AddLink(toEntity, fromAttribute, toAttribute string, join JoinOperator) *Link {
	l.Links = append(l.Links, Link{
		FromEntity:    l.ToEntity,
		FromAttribute: fromAttribute,
		ToEntity:      toEntity,
		ToAttribute:   toAttribute,
		JoinOperator:  join,
		Criteria:      Filter{Type: And},
	})
	return &l.Links[len(l.Links)-1]
}

// PageInfo requests a page of results.
// PageNumber 0 reads as 1; Count 0 reads as the store-wide maximum.
type PageInfo struct {
	PageNumber             int
	Count                  int
	ReturnTotalRecordCount bool
	PagingCookie           string
}

// Expression is the structured descriptor and the canonical query form.
type Expression struct {
	EntityName string
	Columns    ColumnSet
	Criteria   Filter
	Orders     []Order
	Links      []Link
	PageInfo   *PageInfo
	TopCount   *int
	Distinct   bool
}

func (*Expression) queryShape() {}

// NewExpression creates a descriptor with an empty And filter and no columns.
func NewExpression(entityName string) *Expression {
	return &Expression{EntityName: entityName, Criteria: Filter{Type: And}}
}

// AddLink appends a top-level link and returns it for further building.
func (e *Expression) AddLink(toEntity, fromAttribute, toAttribute string, join JoinOperator) *Link {
	e.Links = append(e.Links, Link{
		FromEntity:    e.EntityName,
		FromAttribute: fromAttribute,
		ToEntity:      toEntity,
		ToAttribute:   toAttribute,
		JoinOperator:  join,
		Criteria:      Filter{Type: And},
	})
	return &e.Links[len(e.Links)-1]
}

// AddOrder appends a sort key on the root entity.
func (e *Expression) AddOrder(attribute string, descending bool) *Expression {
	e.Orders = append(e.Orders, Order{Attribute: attribute, Descending: descending})
	return e
}

// Top sets the top count.
func (e *Expression) Top(n int) *Expression {
	e.TopCount = &n
	return e
}

// Page sets the page number and size.
func (e *Expression) Page(number, count int) *Expression {
	if e.PageInfo == nil {
		e.PageInfo = &PageInfo{}
	}
	e.PageInfo.PageNumber = number
	e.PageInfo.Count = count
	return e
}

// WalkLinks visits every link depth-first in declaration order.
// The parent is nil for top-level links.
func (e *Expression) WalkLinks(fn func(parent, link *Link)) {
	var walk func(parent *Link, links []Link)
	walk = func(parent *Link, links []Link) {
		for i := range links {
			fn(parent, &links[i])
			walk(&links[i], links[i].Links)
		}
	}
	walk(nil, e.Links)
}

// Fetch is a query in the XML dialect.
type Fetch struct {
	XML string
}

func (*Fetch) queryShape() {}

// ByAttribute is an attribute-equality descriptor: Attributes[i] must equal
// Values[i].
type ByAttribute struct {
	EntityName string
	Columns    ColumnSet
	Attributes []string
	Values     []ir.Value
	Orders     []Order
	PageInfo   *PageInfo
	TopCount   *int
}

func (*ByAttribute) queryShape() {}

// AddAttributeValue appends an attribute/value pair.
func (b *ByAttribute) AddAttributeValue(attribute string, v ir.Value) *ByAttribute {
	b.Attributes = append(b.Attributes, attribute)
	b.Values = append(b.Values, v)
	return b
}

// AssignDefaultAliases names every unaliased link "<to-entity><n>", where n
// counts links to that entity in depth-first declaration order starting at 1.
// Explicit aliases are kept. Calling it twice is a no-op.
func (e *Expression) AssignDefaultAliases() {
	used := map[string]bool{}
	e.WalkLinks(func(_, l *Link) {
		if l.Alias != "" {
			used[l.Alias] = true
		}
	})

	counters := map[string]int{}
	e.WalkLinks(func(_, l *Link) {
		if l.Alias != "" {
			return
		}
		for {
			counters[l.ToEntity]++
			candidate := fmt.Sprintf("%s%d", l.ToEntity, counters[l.ToEntity])
			if !used[candidate] {
				l.Alias = candidate
				used[candidate] = true
				return
			}
		}
	})
}
