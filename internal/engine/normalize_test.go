package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/aggregate"
	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

func TestNormalize_ExpressionIsCopied(t *testing.T) {
	in := query.NewExpression("contact")
	in.Columns = query.Columns("firstname")
	in.Criteria.AddCondition("firstname", query.Equal, ir.NewString("Bob"))
	in.AddLink("account", "parentcustomerid", "accountid", query.Inner)
	in.Top(3)

	n, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "contact", n.EntityName)
	assert.Nil(t, n.Aggregation)

	// Default aliases land on the copy only
	assert.Equal(t, "account1", n.Expression.Links[0].Alias)
	assert.Empty(t, in.Links[0].Alias)

	// Mutating the input afterwards does not leak into the copy
	in.Columns.Columns[0] = "lastname"
	in.Criteria.Conditions[0].Values[0] = ir.NewString("Al")
	*in.TopCount = 99
	assert.Equal(t, []string{"firstname"}, n.Expression.Columns.Columns)
	assert.Equal(t, ir.NewString("Bob"), n.Expression.Criteria.Conditions[0].Values[0])
	assert.Equal(t, 3, *n.Expression.TopCount)
}

func TestNormalize_ByAttribute(t *testing.T) {
	top := 10
	in := &query.ByAttribute{
		EntityName: "contact",
		Columns:    query.AllColumns(),
		Orders:     []query.Order{{Attribute: "lastname", Descending: true}},
		PageInfo:   &query.PageInfo{PageNumber: 2, Count: 5},
		TopCount:   &top,
	}
	in.AddAttributeValue("firstname", ir.NewString("Bob")).
		AddAttributeValue("age", ir.NewInt(40))

	n, err := Normalize(in)
	require.NoError(t, err)

	expr := n.Expression
	assert.Equal(t, query.And, expr.Criteria.Type)
	require.Len(t, expr.Criteria.Conditions, 2)
	assert.Equal(t, query.Condition{Attribute: "firstname", Operator: query.Equal, Values: []ir.Value{ir.NewString("Bob")}}, expr.Criteria.Conditions[0])
	assert.Equal(t, query.Condition{Attribute: "age", Operator: query.Equal, Values: []ir.Value{ir.NewInt(40)}}, expr.Criteria.Conditions[1])
	assert.Equal(t, in.Orders, expr.Orders)
	assert.Equal(t, *in.PageInfo, *expr.PageInfo)
	assert.Equal(t, 10, *expr.TopCount)
	assert.True(t, expr.Columns.All)

	expr.PageInfo.PageNumber = 7
	assert.Equal(t, 2, in.PageInfo.PageNumber, "paging is copied")
}

func TestNormalize_Fetch(t *testing.T) {
	n, err := Normalize(&query.Fetch{XML: `
		<fetch aggregate="true">
		  <entity name="contact">
		    <attribute name="contactid" alias="total" aggregate="count" />
		    <attribute name="lastname" alias="lastname" groupby="true" />
		  </entity>
		</fetch>`})
	require.NoError(t, err)
	assert.Equal(t, "contact", n.EntityName)
	require.NotNil(t, n.Aggregation)
	assert.Equal(t, []aggregate.Column{{Alias: "total", Attribute: "contactid", Function: aggregate.Count}}, n.Aggregation.Columns)

	n, err = Normalize(&query.Fetch{XML: `<fetch><entity name="account"><all-attributes /></entity></fetch>`})
	require.NoError(t, err)
	assert.Nil(t, n.Aggregation)
	assert.True(t, n.Expression.Columns.All)
}

func TestNormalize_Errors(t *testing.T) {
	unknownAlias := query.NewExpression("contact")
	unknownAlias.Criteria.AddAliasCondition("acc", "name", query.Null)

	tests := []struct {
		name  string
		query query.Query
		code  fault.Code
	}{
		{"nil query", nil, fault.CodeUnsupportedQueryKind},
		{"foreign shape", bogusQuery{}, fault.CodeUnsupportedQueryKind},
		{"nil expression", (*query.Expression)(nil), fault.CodeMalformedQuery},
		{"no entity", query.NewExpression(""), fault.CodeMalformedQuery},
		{"unknown alias", unknownAlias, fault.CodeMalformedQuery},
		{"bad xml", &query.Fetch{XML: "<fetch><entity"}, fault.CodeMalformedQuery},
		{"count mismatch", &query.ByAttribute{EntityName: "contact", Attributes: []string{"a", "b"}, Values: []ir.Value{ir.NewInt(1)}}, fault.CodeMalformedQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.code, fault.CodeOf(err), "got %v", err)
		})
	}
}

func TestNormalize_UnsupportedKindNamesShape(t *testing.T) {
	_, err := Normalize(bogusQuery{})
	require.Error(t, err)
	assert.True(t, fault.IsUnsupportedQueryKind(err))
	assert.Contains(t, err.Error(), "bogusQuery")
}
