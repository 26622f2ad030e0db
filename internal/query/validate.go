package query

import (
	"fmt"

	"github.com/roach88/orgfake/internal/ir"
)

// ValidationResult lists the problems found in an expression.
type ValidationResult struct {
	// Valid is true when Errors is empty.
	Valid bool

	// Errors describes each problem, in traversal order.
	Errors []string
}

// Validate checks an expression for problems the executor cannot recover
// from:
//  1. Missing entity name, link entity or link attributes
//  2. Unknown operators and wrong operand counts
//  3. List operands given to ordering operators
//  4. Conditions and orders naming an alias no link declares
//  5. Two links sharing an alias
//
// Links without an alias are not alias-checked; the normalizer assigns
// default aliases before validating.
//
// Validate is a pure function with no side effects.
func Validate(e *Expression) ValidationResult {
	v := &validator{errors: []string{}, aliases: map[string]bool{}}
	v.validateExpression(e)
	return ValidationResult{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// validator accumulates errors during traversal.
type validator struct {
	errors  []string
	aliases map[string]bool
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateExpression(e *Expression) {
	if e == nil {
		v.addError("nil expression")
		return
	}
	if e.EntityName == "" {
		v.addError("expression has no entity name")
	}

	v.aliases[e.EntityName] = true
	e.WalkLinks(func(_, l *Link) {
		if l.Alias == "" {
			return
		}
		if v.aliases[l.Alias] {
			v.addError("duplicate link alias %q", l.Alias)
		}
		v.aliases[l.Alias] = true
	})

	v.validateFilter(e.Criteria, "criteria", true)
	v.validateOrders(e.Orders, "order")

	e.WalkLinks(func(_, l *Link) {
		v.validateLink(l)
	})
}

func (v *validator) validateLink(l *Link) {
	where := fmt.Sprintf("link %q", l.ToEntity)
	if l.Alias != "" {
		where = fmt.Sprintf("link %q", l.Alias)
	}

	if l.ToEntity == "" {
		v.addError("%s: missing link entity name", where)
	}
	if l.FromAttribute == "" || l.ToAttribute == "" {
		v.addError("%s: missing from/to attribute", where)
	}
	switch l.JoinOperator {
	case "", Inner, LeftOuter:
	default:
		v.addError("%s: unknown join operator %q", where, l.JoinOperator)
	}

	// Link criteria address the linked entity itself
	v.validateFilter(l.Criteria, where+" criteria", false)
	v.validateOrders(l.Orders, where+" order")
}

func (v *validator) validateFilter(f Filter, where string, resolveAliases bool) {
	switch f.Type {
	case "", And, Or:
	default:
		v.addError("%s: unknown filter type %q", where, f.Type)
	}

	for _, c := range f.Conditions {
		v.validateCondition(c, where, resolveAliases)
	}
	for _, sub := range f.Filters {
		v.validateFilter(sub, where, resolveAliases)
	}
}

func (v *validator) validateCondition(c Condition, where string, resolveAliases bool) {
	alias, attr := c.Target()
	if attr == "" {
		v.addError("%s: condition has no attribute", where)
		return
	}

	if _, known := operators[string(c.Operator)]; !known {
		v.addError("%s: condition on %q has unknown operator %q", where, attr, c.Operator)
		return
	}

	values := FlattenValues(c.Values)
	min, max := c.Operator.Arity()
	switch {
	case len(values) < min:
		v.addError("%s: operator %s on %q needs at least %d value(s), got %d", where, c.Operator, attr, min, len(values))
	case max >= 0 && len(values) > max:
		v.addError("%s: operator %s on %q takes at most %d value(s), got %d", where, c.Operator, attr, max, len(values))
	}

	if c.Operator.Ordering() && c.Operator != Between && c.Operator != NotBetween {
		for _, val := range c.Values {
			if _, isList := val.(ir.List); isList {
				v.addError("%s: operator %s on %q does not accept a list operand", where, c.Operator, attr)
			}
		}
	}

	if resolveAliases && alias != "" && !v.aliases[alias] {
		v.addError("%s: condition references unknown alias %q", where, alias)
	}
}

func (v *validator) validateOrders(orders []Order, where string) {
	for _, o := range orders {
		if o.Attribute == "" {
			v.addError("%s: order has no attribute", where)
		}
		if o.EntityAlias != "" && !v.aliases[o.EntityAlias] {
			v.addError("%s: order references unknown alias %q", where, o.EntityAlias)
		}
	}
}

// FlattenValues expands List operands into their elements.
func FlattenValues(values []ir.Value) []ir.Value {
	hasList := false
	for _, v := range values {
		if _, ok := v.(ir.List); ok {
			hasList = true
			break
		}
	}
	if !hasList {
		return values
	}

	out := make([]ir.Value, 0, len(values))
	for _, v := range values {
		if list, ok := v.(ir.List); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, v)
	}
	return out
}
