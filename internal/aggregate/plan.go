package aggregate

import (
	"fmt"
	"strings"
)

// Function is an aggregate function name as written in the XML dialect.
type Function string

const (
	Count       Function = "count"
	CountColumn Function = "countcolumn"
	Sum         Function = "sum"
	Avg         Function = "avg"
	Min         Function = "min"
	Max         Function = "max"
)

// ParseFunction resolves an aggregate name (case-insensitive).
func ParseFunction(name string) (Function, error) {
	switch f := Function(strings.ToLower(strings.TrimSpace(name))); f {
	case Count, CountColumn, Sum, Avg, Min, Max:
		return f, nil
	default:
		return "", fmt.Errorf("unknown aggregate %q", name)
	}
}

// DateGrouping truncates a date group-by value.
type DateGrouping string

const (
	NoDateGrouping DateGrouping = ""
	Year           DateGrouping = "year"
	Quarter        DateGrouping = "quarter"
	Month          DateGrouping = "month"
	Week           DateGrouping = "week"
	Day            DateGrouping = "day"
)

// ParseDateGrouping resolves a dategrouping attribute value.
func ParseDateGrouping(name string) (DateGrouping, error) {
	switch g := DateGrouping(strings.ToLower(strings.TrimSpace(name))); g {
	case NoDateGrouping, Year, Quarter, Month, Week, Day:
		return g, nil
	default:
		return "", fmt.Errorf("unknown date grouping %q", name)
	}
}

// GroupBy is a grouping column.
// Attribute is the key of the value on the input row ("name" for the root
// entity, "alias.name" for a linked attribute).
type GroupBy struct {
	Alias        string
	Attribute    string
	DateGrouping DateGrouping
}

// Column is an aggregate output column.
type Column struct {
	Alias     string
	Attribute string
	Function  Function
	Distinct  bool
}

// Order sorts grouped rows by an output alias.
type Order struct {
	Alias      string
	Descending bool
}

// Plan describes the aggregation requested by a query.
type Plan struct {
	Groups  []GroupBy
	Columns []Column
	Orders  []Order
}

// outputName returns the key an output column is stored under.
func outputName(alias, attribute string) string {
	if alias != "" {
		return alias
	}
	return attribute
}
