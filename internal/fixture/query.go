package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/orgfake/internal/query"
)

// QuerySpec is a query written in YAML. Exactly one shape is used:
//
//	fetch: |                       # XML dialect text
//	  <fetch>...</fetch>
//
//	entity: contact                # attribute-equality descriptor
//	match:
//	  - {attribute: lastname, value: Smith}
//
//	entity: contact                # structured descriptor
//	columns: [firstname]           # or: columns: all
//	criteria:
//	  type: or
//	  conditions:
//	    - {attribute: firstname, operator: like, value: "B%"}
//	links:
//	  - entity: account
//	    from_attribute: parentcustomerid
//	    to_attribute: accountid
//	    alias: acc
type QuerySpec struct {
	Fetch    string       `yaml:"fetch,omitempty"`
	Entity   string       `yaml:"entity,omitempty"`
	Columns  *ColumnsSpec `yaml:"columns,omitempty"`
	Distinct bool         `yaml:"distinct,omitempty"`
	Top      *int         `yaml:"top,omitempty"`
	Criteria *FilterSpec  `yaml:"criteria,omitempty"`
	Orders   []OrderSpec  `yaml:"orders,omitempty"`
	Links    []LinkSpec   `yaml:"links,omitempty"`
	Page     *PageSpec    `yaml:"page,omitempty"`
	Match    []MatchSpec  `yaml:"match,omitempty"`
}

// ColumnsSpec is either the scalar "all" or a list of attribute names.
type ColumnsSpec struct {
	query.ColumnSet
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ColumnsSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "all" {
			return fmt.Errorf("line %d: columns must be \"all\" or a list", node.Line)
		}
		c.ColumnSet = query.AllColumns()
		return nil
	}
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	c.ColumnSet = query.Columns(names...)
	return nil
}

// FilterSpec is a condition group.
type FilterSpec struct {
	Type       string          `yaml:"type,omitempty"`
	Conditions []ConditionSpec `yaml:"conditions,omitempty"`
	Filters    []FilterSpec    `yaml:"filters,omitempty"`
}

// ConditionSpec is a filter leaf. Value and Values are concatenated.
type ConditionSpec struct {
	Alias     string  `yaml:"alias,omitempty"`
	Attribute string  `yaml:"attribute"`
	Operator  string  `yaml:"operator"`
	Value     *Value  `yaml:"value,omitempty"`
	Values    []Value `yaml:"values,omitempty"`
}

// OrderSpec is a sort key.
type OrderSpec struct {
	Alias      string `yaml:"alias,omitempty"`
	Attribute  string `yaml:"attribute"`
	Descending bool   `yaml:"descending,omitempty"`
}

// LinkSpec joins a related entity on
// parent.FromAttribute = Entity.ToAttribute.
type LinkSpec struct {
	Entity        string       `yaml:"entity"`
	FromAttribute string       `yaml:"from_attribute"`
	ToAttribute   string       `yaml:"to_attribute"`
	Join          string       `yaml:"join,omitempty"`
	Alias         string       `yaml:"alias,omitempty"`
	Columns       *ColumnsSpec `yaml:"columns,omitempty"`
	Criteria      *FilterSpec  `yaml:"criteria,omitempty"`
	Orders        []OrderSpec  `yaml:"orders,omitempty"`
	Links         []LinkSpec   `yaml:"links,omitempty"`
}

// PageSpec requests a page.
type PageSpec struct {
	Number           int    `yaml:"number,omitempty"`
	Count            int    `yaml:"count,omitempty"`
	ReturnTotalCount bool   `yaml:"return_total_record_count,omitempty"`
	PagingCookie     string `yaml:"paging_cookie,omitempty"`
}

// MatchSpec is one attribute/value pair of an attribute-equality query.
type MatchSpec struct {
	Attribute string `yaml:"attribute"`
	Value     Value  `yaml:"value"`
}

// LoadQuery reads a query file: ".xml" files hold the XML dialect, any
// other extension is YAML.
func LoadQuery(path string) (query.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return &query.Fetch{XML: string(data)}, nil
	}
	q, err := ParseQuery(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// ParseQuery decodes query YAML.
func ParseQuery(data []byte) (query.Query, error) {
	var spec QuerySpec
	if err := decodeStrict(data, &spec); err != nil {
		return nil, err
	}
	return spec.Query()
}

// Query builds the query descriptor.
func (s *QuerySpec) Query() (query.Query, error) {
	switch {
	case s.Fetch != "":
		if s.Entity != "" || s.Match != nil || s.Criteria != nil || s.Links != nil {
			return nil, errors.New("fetch cannot be combined with other query fields")
		}
		return &query.Fetch{XML: s.Fetch}, nil
	case s.Entity == "":
		return nil, errors.New("entity is required")
	case s.Match != nil:
		if s.Criteria != nil || s.Links != nil || s.Distinct {
			return nil, errors.New("match cannot be combined with criteria, links or distinct")
		}
		return s.byAttribute(), nil
	default:
		return s.expression()
	}
}

func (s *QuerySpec) byAttribute() *query.ByAttribute {
	q := &query.ByAttribute{
		EntityName: s.Entity,
		Columns:    columns(s.Columns),
		Orders:     orders(s.Orders),
		PageInfo:   s.Page.pageInfo(),
		TopCount:   s.Top,
	}
	for _, m := range s.Match {
		q.AddAttributeValue(m.Attribute, m.Value.Value)
	}
	return q
}

func (s *QuerySpec) expression() (*query.Expression, error) {
	q := query.NewExpression(s.Entity)
	q.Columns = columns(s.Columns)
	q.Distinct = s.Distinct
	q.TopCount = s.Top
	q.Orders = orders(s.Orders)
	q.PageInfo = s.Page.pageInfo()

	if s.Criteria != nil {
		f, err := s.Criteria.filter("criteria")
		if err != nil {
			return nil, err
		}
		q.Criteria = f
	}

	links, err := buildLinks(s.Entity, s.Links, "links")
	if err != nil {
		return nil, err
	}
	q.Links = links
	return q, nil
}

func (f *FilterSpec) filter(path string) (query.Filter, error) {
	out := query.Filter{Type: query.And}
	switch strings.ToLower(f.Type) {
	case "", "and":
	case "or":
		out.Type = query.Or
	default:
		return out, fmt.Errorf("%s: unknown filter type %q", path, f.Type)
	}

	for i, c := range f.Conditions {
		op, ok := query.ParseOperator(c.Operator)
		if !ok {
			return out, fmt.Errorf("%s.conditions[%d]: unknown operator %q", path, i, c.Operator)
		}
		cond := query.Condition{EntityAlias: c.Alias, Attribute: c.Attribute, Operator: op}
		if c.Value != nil {
			cond.Values = append(cond.Values, c.Value.Value)
		}
		for _, v := range c.Values {
			cond.Values = append(cond.Values, v.Value)
		}
		out.Conditions = append(out.Conditions, cond)
	}

	for i, sub := range f.Filters {
		nested, err := sub.filter(fmt.Sprintf("%s.filters[%d]", path, i))
		if err != nil {
			return out, err
		}
		out.Filters = append(out.Filters, nested)
	}
	return out, nil
}

func buildLinks(parent string, specs []LinkSpec, path string) ([]query.Link, error) {
	var links []query.Link
	for i, spec := range specs {
		where := fmt.Sprintf("%s[%d]", path, i)
		if spec.Entity == "" || spec.FromAttribute == "" || spec.ToAttribute == "" {
			return nil, fmt.Errorf("%s: entity, from_attribute and to_attribute are required", where)
		}

		join := query.Inner
		switch strings.ToLower(spec.Join) {
		case "", "inner":
		case "outer", "left-outer":
			join = query.LeftOuter
		default:
			return nil, fmt.Errorf("%s: unknown join %q", where, spec.Join)
		}

		link := query.Link{
			FromEntity:    parent,
			FromAttribute: spec.FromAttribute,
			ToEntity:      spec.Entity,
			ToAttribute:   spec.ToAttribute,
			JoinOperator:  join,
			Alias:         spec.Alias,
			Columns:       columns(spec.Columns),
			Criteria:      query.Filter{Type: query.And},
			Orders:        orders(spec.Orders),
		}
		if spec.Criteria != nil {
			f, err := spec.Criteria.filter(where + ".criteria")
			if err != nil {
				return nil, err
			}
			link.Criteria = f
		}
		nested, err := buildLinks(spec.Entity, spec.Links, where+".links")
		if err != nil {
			return nil, err
		}
		link.Links = nested
		links = append(links, link)
	}
	return links, nil
}

func columns(c *ColumnsSpec) query.ColumnSet {
	if c == nil {
		return query.ColumnSet{}
	}
	return c.ColumnSet
}

func orders(specs []OrderSpec) []query.Order {
	var out []query.Order
	for _, o := range specs {
		out = append(out, query.Order{EntityAlias: o.Alias, Attribute: o.Attribute, Descending: o.Descending})
	}
	return out
}

func (p *PageSpec) pageInfo() *query.PageInfo {
	if p == nil {
		return nil
	}
	return &query.PageInfo{
		PageNumber:             p.Number,
		Count:                  p.Count,
		ReturnTotalRecordCount: p.ReturnTotalCount,
		PagingCookie:           p.PagingCookie,
	}
}
