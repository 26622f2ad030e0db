package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/ir"
)

func TestQueryShapesSealed(t *testing.T) {
	shapes := []Query{&Expression{}, &Fetch{}, &ByAttribute{}}
	assert.Len(t, shapes, 3)
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		name     string
		expected Operator
	}{
		{"eq", Equal},
		{"neq", NotEqual},
		{"ne", NotEqual},
		{"LE", LessEqual},
		{" begins-with ", BeginsWith},
		{"not-begin-with", DoesNotBeginWith},
		{"not-end-with", DoesNotEndWith},
		{"not-null", NotNull},
		{"not-between", NotBetween},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := ParseOperator(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.expected, op)
		})
	}

	_, ok := ParseOperator("eq-userid")
	assert.False(t, ok)
}

func TestOperatorArity(t *testing.T) {
	min, max := Null.Arity()
	assert.Equal(t, 0, min)
	assert.Equal(t, 0, max)

	min, max = In.Arity()
	assert.Equal(t, 1, min)
	assert.Equal(t, -1, max)

	min, max = Between.Arity()
	assert.Equal(t, 2, min)
	assert.Equal(t, 2, max)

	min, max = Like.Arity()
	assert.Equal(t, 1, min)
	assert.Equal(t, 1, max)
}

func TestConditionTarget(t *testing.T) {
	tests := []struct {
		name      string
		cond      Condition
		alias     string
		attribute string
	}{
		{"plain", Condition{Attribute: "firstname"}, "", "firstname"},
		{"entity alias", Condition{EntityAlias: "Account", Attribute: "accountid"}, "Account", "accountid"},
		{"dotted", Condition{Attribute: "acc.name"}, "acc", "name"},
		{"alias wins over dot", Condition{EntityAlias: "x", Attribute: "a.b"}, "x", "a.b"},
		{"leading dot is not an alias", Condition{Attribute: ".name"}, "", ".name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alias, attr := tt.cond.Target()
			assert.Equal(t, tt.alias, alias)
			assert.Equal(t, tt.attribute, attr)
		})
	}
}

func TestColumnSetIncludes(t *testing.T) {
	assert.True(t, AllColumns().Includes("anything"))
	assert.True(t, Columns("a", "b").Includes("b"))
	assert.False(t, Columns("a").Includes("b"))
	assert.False(t, ColumnSet{}.Includes("a"))
}

func TestFilterIsEmpty(t *testing.T) {
	f := Filter{Type: And}
	assert.True(t, f.IsEmpty())

	f.AddFilter(Or)
	assert.True(t, f.IsEmpty(), "nested empty groups are still empty")

	f.Filters[0].AddCondition("name", Null)
	assert.False(t, f.IsEmpty())
}

func TestWalkLinksDepthFirst(t *testing.T) {
	e := NewExpression("contact")
	acc := e.AddLink("account", "parentcustomerid", "accountid", LeftOuter)
	acc.Alias = "acc"
	owner := acc.AddLink("systemuser", "ownerid", "systemuserid", Inner)
	owner.Alias = "owner"
	e.Links = append(e.Links, Link{ToEntity: "lead", Alias: "lead"})

	var visited []string
	var parents []string
	e.WalkLinks(func(parent, l *Link) {
		visited = append(visited, l.Alias)
		if parent == nil {
			parents = append(parents, "")
		} else {
			parents = append(parents, parent.Alias)
		}
	})

	assert.Equal(t, []string{"acc", "owner", "lead"}, visited)
	assert.Equal(t, []string{"", "acc", ""}, parents)
	assert.Equal(t, "account", e.Links[0].Links[0].FromEntity)
}

func TestCloneIsDeep(t *testing.T) {
	e := NewExpression("contact")
	e.Columns = Columns("firstname")
	e.Criteria.AddCondition("firstname", In, ir.NewString("Al"), ir.NewString("Bob"))
	e.Criteria.AddFilter(Or).AddCondition("lastname", NotNull)
	link := e.AddLink("account", "parentcustomerid", "accountid", Inner)
	link.Columns = Columns("name")
	link.Criteria.AddCondition("name", Equal, ir.NewString("Contoso"))
	e.AddOrder("firstname", true).Top(3).Page(2, 10)

	c := e.Clone()
	require.Equal(t, e, c)

	c.Columns.Columns[0] = "changed"
	c.Criteria.Conditions[0].Values[0] = ir.NewString("changed")
	c.Criteria.Filters[0].Conditions[0].Attribute = "changed"
	c.Links[0].Criteria.Conditions[0].Attribute = "changed"
	c.Links[0].Columns.Columns[0] = "changed"
	c.Orders[0].Descending = false
	*c.TopCount = 99
	c.PageInfo.PageNumber = 7

	assert.Equal(t, "firstname", e.Columns.Columns[0])
	assert.Equal(t, ir.String("Al"), e.Criteria.Conditions[0].Values[0])
	assert.Equal(t, "lastname", e.Criteria.Filters[0].Conditions[0].Attribute)
	assert.Equal(t, "name", e.Links[0].Criteria.Conditions[0].Attribute)
	assert.Equal(t, "name", e.Links[0].Columns.Columns[0])
	assert.True(t, e.Orders[0].Descending)
	assert.Equal(t, 3, *e.TopCount)
	assert.Equal(t, 2, e.PageInfo.PageNumber)
}

func TestCloneNil(t *testing.T) {
	var e *Expression
	assert.Nil(t, e.Clone())
}

func TestByAttributeBuilder(t *testing.T) {
	b := &ByAttribute{EntityName: "contact"}
	b.AddAttributeValue("firstname", ir.NewString("Bob")).AddAttributeValue("age", ir.NewInt(3))

	assert.Equal(t, []string{"firstname", "age"}, b.Attributes)
	assert.Equal(t, []ir.Value{ir.String("Bob"), ir.Int(3)}, b.Values)
}

func TestAssignDefaultAliases(t *testing.T) {
	e := NewExpression("contact")
	e.AddLink("account", "parentcustomerid", "accountid", Inner)
	e.AddLink("account", "originatingleadid", "accountid", LeftOuter).Alias = "account2"
	e.Links[0].AddLink("account", "parentaccountid", "accountid", Inner)

	e.AssignDefaultAliases()

	assert.Equal(t, "account1", e.Links[0].Alias)
	assert.Equal(t, "account3", e.Links[0].Links[0].Alias, "account2 is taken explicitly")
	assert.Equal(t, "account2", e.Links[1].Alias)

	before := e.Clone()
	e.AssignDefaultAliases()
	assert.Equal(t, before, e)
}
