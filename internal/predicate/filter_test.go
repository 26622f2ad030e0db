package predicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

func rowResolver(attrs map[string]ir.Value) Resolver {
	return func(alias, attribute string) (ir.Value, error) {
		key := attribute
		if alias != "" {
			key = alias + "." + attribute
		}
		v, ok := attrs[key]
		if !ok {
			return ir.Null{}, nil
		}
		return v, nil
	}
}

func TestEvaluate(t *testing.T) {
	row := rowResolver(map[string]ir.Value{
		"firstname":    ir.NewString("Bob"),
		"age":          ir.NewInt(40),
		"Account.name": ir.Null{},
	})

	tests := []struct {
		name     string
		build    func() query.Filter
		expected bool
	}{
		{
			name:     "empty matches",
			build:    func() query.Filter { return query.Filter{Type: query.And} },
			expected: true,
		},
		{
			name: "and all true",
			build: func() query.Filter {
				f := query.Filter{Type: query.And}
				f.AddCondition("firstname", query.Equal, ir.NewString("bob"))
				f.AddCondition("age", query.GreaterThan, ir.NewString("30"))
				return f
			},
			expected: true,
		},
		{
			name: "and one false",
			build: func() query.Filter {
				f := query.Filter{Type: query.And}
				f.AddCondition("firstname", query.Equal, ir.NewString("bob"))
				f.AddCondition("age", query.LessThan, ir.NewString("30"))
				return f
			},
			expected: false,
		},
		{
			name: "or one true",
			build: func() query.Filter {
				f := query.Filter{Type: query.Or}
				f.AddCondition("firstname", query.Equal, ir.NewString("al"))
				f.AddCondition("age", query.Equal, ir.NewInt(40))
				return f
			},
			expected: true,
		},
		{
			name: "nested or inside and",
			build: func() query.Filter {
				f := query.Filter{Type: query.And}
				f.AddCondition("firstname", query.BeginsWith, ir.NewString("B"))
				sub := f.AddFilter(query.Or)
				sub.AddCondition("age", query.Equal, ir.NewInt(1))
				sub.AddCondition("missing", query.Null)
				return f
			},
			expected: true,
		},
		{
			name: "alias null",
			build: func() query.Filter {
				f := query.Filter{Type: query.And}
				f.AddAliasCondition("Account", "name", query.Null)
				return f
			},
			expected: true,
		},
		{
			name: "dotted alias",
			build: func() query.Filter {
				f := query.Filter{Type: query.And}
				f.AddCondition("Account.name", query.NotNull)
				return f
			},
			expected: false,
		},
		{
			name: "empty nested groups are ignored",
			build: func() query.Filter {
				f := query.Filter{Type: query.Or}
				f.AddFilter(query.And)
				f.AddCondition("age", query.Equal, ir.NewInt(1))
				return f
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Evaluate(tt.build(), row)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestEvaluate_PropagatesResolverErrors(t *testing.T) {
	boom := errors.New("unknown alias")
	f := query.Filter{Type: query.And}
	f.AddAliasCondition("nope", "name", query.Null)

	_, err := Evaluate(f, func(string, string) (ir.Value, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
