package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/ir"
)

func TestValidate_ValidExpression(t *testing.T) {
	e := NewExpression("contact")
	e.Columns = AllColumns()
	e.Criteria.AddCondition("firstname", LessEqual, ir.NewString("Bob"))
	e.Criteria.AddCondition("lastname", NotNull)
	e.Criteria.AddCondition("age", Between, ir.NewInt(1), ir.NewInt(9))
	e.Criteria.AddCondition("statuscode", In, ir.NewList(ir.NewInt(1), ir.NewInt(2)))
	link := e.AddLink("account", "parentcustomerid", "accountid", LeftOuter)
	link.Alias = "Account"
	link.Criteria.AddCondition("accountnumber", Equal, ir.NewInt(5))
	e.Criteria.AddAliasCondition("Account", "accountid", Null)
	e.Criteria.AddCondition("Account.name", Like, ir.NewString("C%"))
	e.Orders = append(e.Orders, Order{EntityAlias: "Account", Attribute: "name"})

	result := Validate(e)

	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
}

func TestValidate_Nil(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "nil expression")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Expression
		message string
	}{
		{
			name:    "missing entity",
			build:   func() *Expression { return NewExpression("") },
			message: "no entity name",
		},
		{
			name: "unknown operator",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("firstname", Operator("sounds-like"), ir.NewString("x"))
				return e
			},
			message: "unknown operator",
		},
		{
			name: "empty in",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("firstname", In)
				return e
			},
			message: "needs at least 1",
		},
		{
			name: "empty in list",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("firstname", In, ir.NewList())
				return e
			},
			message: "needs at least 1",
		},
		{
			name: "between arity",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("age", Between, ir.NewInt(1))
				return e
			},
			message: "needs at least 2",
		},
		{
			name: "null with operand",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("age", Null, ir.NewInt(1))
				return e
			},
			message: "takes at most 0",
		},
		{
			name: "ordering with list",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("age", GreaterThan, ir.NewList(ir.NewInt(1)))
				return e
			},
			message: "does not accept a list",
		},
		{
			name: "unknown alias",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddAliasCondition("nope", "name", NotNull)
				return e
			},
			message: `unknown alias "nope"`,
		},
		{
			name: "unknown order alias",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Orders = append(e.Orders, Order{EntityAlias: "nope", Attribute: "name"})
				return e
			},
			message: `order references unknown alias "nope"`,
		},
		{
			name: "duplicate alias",
			build: func() *Expression {
				e := NewExpression("contact")
				e.AddLink("account", "a", "b", Inner).Alias = "x"
				e.AddLink("lead", "a", "b", Inner).Alias = "x"
				return e
			},
			message: `duplicate link alias "x"`,
		},
		{
			name: "link without attributes",
			build: func() *Expression {
				e := NewExpression("contact")
				e.AddLink("account", "", "", Inner)
				return e
			},
			message: "missing from/to attribute",
		},
		{
			name: "bad join",
			build: func() *Expression {
				e := NewExpression("contact")
				e.AddLink("account", "a", "b", JoinOperator("cross"))
				return e
			},
			message: "unknown join operator",
		},
		{
			name: "condition without attribute",
			build: func() *Expression {
				e := NewExpression("contact")
				e.Criteria.AddCondition("", NotNull)
				return e
			},
			message: "no attribute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.build())
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.message)
		})
	}
}

func TestValidate_EntityNameIsAnAlias(t *testing.T) {
	e := NewExpression("contact")
	e.Criteria.AddAliasCondition("contact", "firstname", NotNull)
	assert.True(t, Validate(e).Valid)
}

func TestFlattenValues(t *testing.T) {
	vals := []ir.Value{ir.NewInt(1), ir.NewList(ir.NewInt(2), ir.NewInt(3))}
	assert.Equal(t, []ir.Value{ir.Int(1), ir.Int(2), ir.Int(3)}, FlattenValues(vals))

	plain := []ir.Value{ir.NewInt(1)}
	assert.Equal(t, plain, FlattenValues(plain))
}
