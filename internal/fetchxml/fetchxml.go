// Package fetchxml parses the XML query dialect into a canonical
// query.Expression and, for aggregate queries, an aggregate.Plan.
//
// Literal condition values stay ir.String; the predicate evaluator coerces
// them to the attribute's runtime type. Note the dialect's link-entity
// attribute naming: "from" is the attribute on the linked entity and "to"
// the attribute on the parent.
package fetchxml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/roach88/orgfake/internal/aggregate"
	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// Document is a parsed query.
type Document struct {
	expr      *query.Expression
	plan      *aggregate.Plan
	aggregate bool
}

// Parse parses and converts a query document.
// Syntax errors and unknown names fail with a MALFORMED_QUERY fault.
func Parse(text string) (*Document, error) {
	var root fetchNode
	if err := xml.Unmarshal([]byte(text), &root); err != nil {
		return nil, fault.Newf(fault.CodeMalformedQuery, "invalid fetch xml: %v", err)
	}
	if root.Entity == nil || root.Entity.Name == "" {
		return nil, fault.New(fault.CodeMalformedQuery, "fetch xml has no entity element with a name")
	}

	c := &converter{}
	doc, err := c.convert(&root)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Expression returns a copy of the canonical descriptor.
func (d *Document) Expression() *query.Expression {
	return d.expr.Clone()
}

// EntityName returns the queried entity.
func (d *Document) EntityName() string {
	return d.expr.EntityName
}

// HasAggregations reports whether the document declared aggregate="true".
func (d *Document) HasAggregations() bool {
	return d.aggregate
}

// Aggregation returns the aggregation plan, or nil for plain queries.
func (d *Document) Aggregation() *aggregate.Plan {
	return d.plan
}

type converter struct {
	aggregate bool
	plan      aggregate.Plan
}

func (c *converter) convert(root *fetchNode) (*Document, error) {
	var err error
	if c.aggregate, err = parseBool("aggregate", root.Aggregate); err != nil {
		return nil, err
	}

	expr := query.NewExpression(root.Entity.Name)
	if expr.Distinct, err = parseBool("distinct", root.Distinct); err != nil {
		return nil, err
	}

	if root.Top != "" {
		top, err := parseInt("top", root.Top)
		if err != nil {
			return nil, err
		}
		expr.TopCount = &top
	}

	if root.Count != "" || root.Page != "" || root.ReturnTotal != "" || root.PagingCookie != "" {
		page := &query.PageInfo{PagingCookie: root.PagingCookie}
		if root.Count != "" {
			if page.Count, err = parseInt("count", root.Count); err != nil {
				return nil, err
			}
		}
		if root.Page != "" {
			if page.PageNumber, err = parseInt("page", root.Page); err != nil {
				return nil, err
			}
		}
		if page.ReturnTotalRecordCount, err = parseBool("returntotalrecordcount", root.ReturnTotal); err != nil {
			return nil, err
		}
		expr.PageInfo = page
	}

	ent := root.Entity
	expr.Columns = columns(ent.AllAttributes, ent.Attributes)
	if expr.Criteria, err = filters(ent.Filters); err != nil {
		return nil, err
	}
	if expr.Orders, err = c.orders(ent.Orders); err != nil {
		return nil, err
	}
	for _, ln := range ent.Links {
		link, err := c.link(expr.EntityName, ln)
		if err != nil {
			return nil, err
		}
		expr.Links = append(expr.Links, link)
	}

	// Aggregate columns need link aliases, so assign them before planning.
	expr.AssignDefaultAliases()

	doc := &Document{expr: expr, aggregate: c.aggregate}
	if c.aggregate {
		if err := c.planAttributes("", ent.Attributes); err != nil {
			return nil, err
		}
		if err := c.planLinks(expr.Links, ent.Links); err != nil {
			return nil, err
		}
		plan := c.plan
		doc.plan = &plan
	}
	return doc, nil
}

func (c *converter) link(parent string, ln linkNode) (query.Link, error) {
	if ln.Name == "" || ln.From == "" || ln.To == "" {
		return query.Link{}, fault.New(fault.CodeMalformedQuery, "link-entity requires name, from and to")
	}

	link := query.Link{
		FromEntity:    parent,
		FromAttribute: ln.To,
		ToEntity:      ln.Name,
		ToAttribute:   ln.From,
		Alias:         ln.Alias,
		Columns:       columns(ln.AllAttributes, ln.Attributes),
	}

	switch strings.ToLower(ln.LinkType) {
	case "", "inner":
		link.JoinOperator = query.Inner
	case "outer":
		link.JoinOperator = query.LeftOuter
	default:
		return query.Link{}, fault.Newf(fault.CodeMalformedQuery, "unsupported link-type %q", ln.LinkType)
	}

	var err error
	if link.Criteria, err = filters(ln.Filters); err != nil {
		return query.Link{}, err
	}
	if link.Orders, err = c.orders(ln.Orders); err != nil {
		return query.Link{}, err
	}
	for _, nested := range ln.Links {
		child, err := c.link(ln.Name, nested)
		if err != nil {
			return query.Link{}, err
		}
		link.Links = append(link.Links, child)
	}
	return link, nil
}

func columns(all *struct{}, attrs []attributeNode) query.ColumnSet {
	if all != nil {
		return query.AllColumns()
	}
	if len(attrs) == 0 {
		return query.ColumnSet{}
	}
	seen := map[string]bool{}
	cols := query.ColumnSet{Columns: []string{}}
	for _, a := range attrs {
		if a.Name == "" || seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		cols.Columns = append(cols.Columns, a.Name)
	}
	return cols
}

// filters folds sibling filter elements into one And group.
func filters(nodes []filterNode) (query.Filter, error) {
	switch len(nodes) {
	case 0:
		return query.Filter{Type: query.And}, nil
	case 1:
		return filter(nodes[0])
	}
	out := query.Filter{Type: query.And}
	for _, n := range nodes {
		f, err := filter(n)
		if err != nil {
			return query.Filter{}, err
		}
		out.Filters = append(out.Filters, f)
	}
	return out, nil
}

func filter(n filterNode) (query.Filter, error) {
	out := query.Filter{}
	switch strings.ToLower(n.Type) {
	case "", "and":
		out.Type = query.And
	case "or":
		out.Type = query.Or
	default:
		return query.Filter{}, fault.Newf(fault.CodeMalformedQuery, "unsupported filter type %q", n.Type)
	}

	for _, cn := range n.Conditions {
		cond, err := condition(cn)
		if err != nil {
			return query.Filter{}, err
		}
		out.Conditions = append(out.Conditions, cond)
	}
	for _, sub := range n.Filters {
		f, err := filter(sub)
		if err != nil {
			return query.Filter{}, err
		}
		out.Filters = append(out.Filters, f)
	}
	return out, nil
}

func condition(n conditionNode) (query.Condition, error) {
	if n.Attribute == "" {
		return query.Condition{}, fault.New(fault.CodeMalformedQuery, "condition requires an attribute")
	}
	op, ok := query.ParseOperator(n.Operator)
	if !ok {
		return query.Condition{}, fault.Newf(fault.CodeMalformedQuery,
			"unsupported operator %q on attribute %q", n.Operator, n.Attribute)
	}

	cond := query.Condition{EntityAlias: n.EntityName, Attribute: n.Attribute, Operator: op}
	if n.Value != nil {
		cond.Values = append(cond.Values, ir.NewString(*n.Value))
	}
	for _, v := range n.Values {
		cond.Values = append(cond.Values, ir.NewString(v))
	}
	return cond, nil
}

// orders converts order elements. In aggregate queries an order names an
// output alias and goes to the plan instead of the expression.
func (c *converter) orders(nodes []orderNode) ([]query.Order, error) {
	var out []query.Order
	for _, n := range nodes {
		desc, err := parseBool("descending", n.Descending)
		if err != nil {
			return nil, err
		}
		if c.aggregate && n.Alias != "" {
			c.plan.Orders = append(c.plan.Orders, aggregate.Order{Alias: n.Alias, Descending: desc})
			continue
		}
		if n.Attribute == "" {
			return nil, fault.New(fault.CodeMalformedQuery, "order requires an attribute")
		}
		out = append(out, query.Order{Attribute: n.Attribute, Descending: desc})
	}
	return out, nil
}

// planLinks walks links alongside their element nodes; both trees have the
// same shape.
func (c *converter) planLinks(links []query.Link, nodes []linkNode) error {
	for i := range links {
		if err := c.planAttributes(links[i].Alias, nodes[i].Attributes); err != nil {
			return err
		}
		if err := c.planLinks(links[i].Links, nodes[i].Links); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) planAttributes(linkAlias string, attrs []attributeNode) error {
	for _, a := range attrs {
		key := a.Name
		if linkAlias != "" {
			key = linkAlias + "." + a.Name
		}

		groupBy, err := parseBool("groupby", a.GroupBy)
		if err != nil {
			return err
		}
		if groupBy {
			dg, err := aggregate.ParseDateGrouping(a.DateGrouping)
			if err != nil {
				return fault.New(fault.CodeMalformedQuery, err.Error())
			}
			c.plan.Groups = append(c.plan.Groups, aggregate.GroupBy{Alias: a.Alias, Attribute: key, DateGrouping: dg})
			continue
		}

		if a.Aggregate == "" {
			continue
		}
		fn, err := aggregate.ParseFunction(a.Aggregate)
		if err != nil {
			return fault.New(fault.CodeMalformedQuery, err.Error())
		}
		if a.Alias == "" {
			return fault.Newf(fault.CodeMalformedQuery, "aggregate attribute %q requires an alias", a.Name)
		}
		distinct, err := parseBool("distinct", a.Distinct)
		if err != nil {
			return err
		}
		c.plan.Columns = append(c.plan.Columns, aggregate.Column{
			Alias:     a.Alias,
			Attribute: key,
			Function:  fn,
			Distinct:  distinct,
		})
	}
	return nil
}

func parseBool(name, s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, fault.Newf(fault.CodeMalformedQuery, "attribute %s: %q is not a boolean", name, s)
	}
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fault.Newf(fault.CodeMalformedQuery, "attribute %s: %q is not a non-negative integer", name, s)
	}
	return n, nil
}
