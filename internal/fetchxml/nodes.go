package fetchxml

import "encoding/xml"

// XML element shapes of the query dialect.

type fetchNode struct {
	XMLName      xml.Name    `xml:"fetch"`
	Top          string      `xml:"top,attr"`
	Count        string      `xml:"count,attr"`
	Page         string      `xml:"page,attr"`
	ReturnTotal  string      `xml:"returntotalrecordcount,attr"`
	Distinct     string      `xml:"distinct,attr"`
	Aggregate    string      `xml:"aggregate,attr"`
	PagingCookie string      `xml:"paging-cookie,attr"`
	Entity       *entityNode `xml:"entity"`
}

type entityNode struct {
	Name          string          `xml:"name,attr"`
	AllAttributes *struct{}       `xml:"all-attributes"`
	Attributes    []attributeNode `xml:"attribute"`
	Orders        []orderNode     `xml:"order"`
	Filters       []filterNode    `xml:"filter"`
	Links         []linkNode      `xml:"link-entity"`
}

type linkNode struct {
	Name          string          `xml:"name,attr"`
	From          string          `xml:"from,attr"`
	To            string          `xml:"to,attr"`
	Alias         string          `xml:"alias,attr"`
	LinkType      string          `xml:"link-type,attr"`
	AllAttributes *struct{}       `xml:"all-attributes"`
	Attributes    []attributeNode `xml:"attribute"`
	Orders        []orderNode     `xml:"order"`
	Filters       []filterNode    `xml:"filter"`
	Links         []linkNode      `xml:"link-entity"`
}

type attributeNode struct {
	Name         string `xml:"name,attr"`
	Alias        string `xml:"alias,attr"`
	Aggregate    string `xml:"aggregate,attr"`
	GroupBy      string `xml:"groupby,attr"`
	Distinct     string `xml:"distinct,attr"`
	DateGrouping string `xml:"dategrouping,attr"`
}

type orderNode struct {
	Attribute  string `xml:"attribute,attr"`
	Alias      string `xml:"alias,attr"`
	Descending string `xml:"descending,attr"`
}

type filterNode struct {
	Type       string          `xml:"type,attr"`
	Conditions []conditionNode `xml:"condition"`
	Filters    []filterNode    `xml:"filter"`
}

type conditionNode struct {
	Attribute  string   `xml:"attribute,attr"`
	EntityName string   `xml:"entityname,attr"`
	Operator   string   `xml:"operator,attr"`
	Value      *string  `xml:"value,attr"`
	Values     []string `xml:"value"`
}
