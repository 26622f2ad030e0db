package predicate

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

func str(s string) []ir.Value { return []ir.Value{ir.NewString(s)} }

func TestMatch_StringOperators(t *testing.T) {
	tests := []struct {
		name     string
		op       query.Operator
		value    string
		operand  string
		expected bool
	}{
		{"begins-with", query.BeginsWith, "Charlie", "cha", true},
		{"begins-with miss", query.BeginsWith, "Charlie", "har", false},
		{"ends-with", query.EndsWith, "Charlie", "LIE", true},
		{"contains", query.Contains, "Charlie", "ARL", true},
		{"not-begin-with", query.DoesNotBeginWith, "Charlie", "cha", false},
		{"not-end-with", query.DoesNotEndWith, "Charlie", "x", true},
		{"not-contain", query.DoesNotContain, "Charlie", "arl", false},
		{"like prefix", query.Like, "Charlie", "ch%", true},
		{"like suffix", query.Like, "Charlie", "%LIE", true},
		{"like inner", query.Like, "Charlie", "%arl%", true},
		{"like single char", query.Like, "Bob", "b_b", true},
		{"like single char needs one", query.Like, "Bb", "b_b", false},
		{"like exact", query.Like, "Bob", "bob", true},
		{"like anchored", query.Like, "Bobby", "bob", false},
		{"like class", query.Like, "Bob", "[abc]ob", true},
		{"like negated class", query.Like, "Bob", "[^abc]ob", false},
		{"like range", query.Like, "Dob", "[a-e]ob", true},
		{"like regexp metachar literal", query.Like, "a.b", "a.b", true},
		{"like dot is not wildcard", query.Like, "axb", "a.b", false},
		{"like unclosed bracket literal", query.Like, "[ab", "[ab", true},
		{"like single char over sharp s", query.Like, "Straße", "stra_e", true},
		{"like single char over sharp s upper", query.Like, "STRAßE", "Stra_E", true},
		{"like sharp s is one char", query.Like, "Straße", "stra__e", false},
		{"like non-ascii case", query.Like, "ÉCOLE", "%école", true},
		{"not-like", query.NotLike, "Charlie", "%z%", true},
		{"equal ignores case", query.Equal, "Bob", "BOB", true},
		{"not equal", query.NotEqual, "Bob", "Al", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Match(tt.op, ir.NewString(tt.value), str(tt.operand))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestMatch_StringOperatorsCaseInvariant(t *testing.T) {
	ops := []query.Operator{query.BeginsWith, query.EndsWith, query.Like, query.Contains}
	values := []string{"Charlie", "charlie", "CHARLIE", "cHaRlIe"}
	operands := map[query.Operator]string{
		query.BeginsWith: "char",
		query.EndsWith:   "lie",
		query.Like:       "c%e",
		query.Contains:   "arl",
	}

	for _, op := range ops {
		for _, v := range values {
			for _, operand := range []string{operands[op], strings.ToUpper(operands[op])} {
				ok, err := Match(op, ir.NewString(v), str(operand))
				require.NoError(t, err)
				assert.True(t, ok, "%s %q %q", op, v, operand)
			}
		}
	}
}

func TestMatch_OrderingIsOrdinal(t *testing.T) {
	names := []string{"Bob", "Charlie", "Al"}

	filter := func(op query.Operator, operand string) []string {
		var out []string
		for _, n := range names {
			ok, err := Match(op, ir.NewString(n), str(operand))
			require.NoError(t, err)
			if ok {
				out = append(out, n)
			}
		}
		return out
	}

	assert.Equal(t, []string{"Al"}, filter(query.LessThan, "B"))
	assert.Equal(t, []string{"Bob", "Al"}, filter(query.LessEqual, "Bob"))
	assert.Equal(t, []string{"Bob", "Charlie"}, filter(query.GreaterEqual, "Bob"))
	assert.Equal(t, []string{"Charlie"}, filter(query.GreaterThan, "Bob"))
}

func TestMatch_NullSemantics(t *testing.T) {
	nulls := []ir.Value{nil, ir.Null{}, ir.NewAliased("Account", "accountid", ir.Null{})}

	for _, v := range nulls {
		ok, err := Match(query.Null, v, nil)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = Match(query.NotNull, v, nil)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = Match(query.Equal, v, str("x"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = Match(query.GreaterThan, v, str("1"))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = Match(query.NotEqual, v, str("x"))
		require.NoError(t, err)
		assert.True(t, ok, "negated operators complement their positive form")
	}

	ok, err := Match(query.Null, ir.NewString(""), nil)
	require.NoError(t, err)
	assert.False(t, ok, "empty string is not null")
}

func TestMatch_Coercion(t *testing.T) {
	id := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	when := ir.NewDateTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		op       query.Operator
		value    ir.Value
		operands []ir.Value
		expected bool
	}{
		{"int equal", query.Equal, ir.NewInt(5), str("5"), true},
		{"int greater", query.GreaterThan, ir.NewInt(10), str("9"), true},
		{"int vs decimal literal", query.LessThan, ir.NewInt(1), str("1.5"), true},
		{"decimal", query.Equal, ir.MustDecimal("12.50"), str("12.5"), true},
		{"typed operand", query.Equal, ir.NewInt(5), []ir.Value{ir.NewInt(5)}, true},
		{"bool", query.Equal, ir.NewBool(true), str("1"), true},
		{"ref by braced guid", query.Equal, ir.NewRef("account", id), str("{3F2504E0-4F89-11D3-9A0C-0305E82C3301}"), true},
		{"guid in", query.In, ir.NewGUID(id), []ir.Value{ir.NewString(uuid.NewString()), ir.NewString(id.String())}, true},
		{"option in list", query.In, ir.NewOptionSet(2, "Inactive"), []ir.Value{ir.NewList(ir.NewString("1"), ir.NewString("2"))}, true},
		{"option not in", query.NotIn, ir.NewOptionSet(3, ""), str("1"), true},
		{"date between", query.Between, when, []ir.Value{ir.NewString("2024-01-01"), ir.NewString("2024-12-31")}, true},
		{"date not between", query.NotBetween, when, []ir.Value{ir.NewString("2023-01-01"), ir.NewString("2023-12-31")}, true},
		{"date on boundary", query.Between, ir.NewInt(5), []ir.Value{ir.NewInt(5), ir.NewInt(5)}, true},
		{"string in ignores case", query.In, ir.NewString("bob"), []ir.Value{ir.NewString("AL"), ir.NewString("BOB")}, true},
		{"like on int", query.Like, ir.NewInt(123), str("1%"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Match(tt.op, tt.value, tt.operands)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		op       query.Operator
		value    ir.Value
		operands []ir.Value
	}{
		{"uncoercible", query.Equal, ir.NewInt(5), str("five")},
		{"incomparable", query.GreaterThan, ir.NewString("a"), []ir.Value{ir.NewInt(1)}},
		{"missing operand", query.Equal, ir.NewInt(5), nil},
		{"between arity", query.Between, ir.NewInt(5), []ir.Value{ir.NewInt(1)}},
		{"unknown operator", query.Operator("sounds-like"), ir.NewString("a"), str("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.op, tt.value, tt.operands)
			require.Error(t, err)
			assert.True(t, fault.IsMalformedQuery(err), "got %v", err)
		})
	}
}

func TestLikePatternCache(t *testing.T) {
	a, err := likePattern("Ab%")
	require.NoError(t, err)
	b, err := likePattern("Ab%")
	require.NoError(t, err)
	assert.Same(t, a, b, "patterns are compiled once")

	c, err := likePattern("aB%")
	require.NoError(t, err)
	assert.True(t, c.MatchString("abc"))
	assert.True(t, a.MatchString("ABC"))
}
