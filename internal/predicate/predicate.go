// Package predicate evaluates query conditions against attribute values.
//
// String operators (begins-with, ends-with, like, contains) and string
// equality are case-insensitive. Ordering operators compare ordinally.
// A missing attribute, an explicit null and an attribute exposed by an
// outer join with no matching row all read as ir.Null, so the null
// operator is true for each of them.
package predicate

import (
	"strings"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// Match evaluates one operator against an attribute value.
//
// Operands are coerced to the attribute's runtime type first, so "5"
// compares as a number against an Int attribute. An operand that cannot be
// coerced fails with MALFORMED_QUERY.
//
// Negated operators are the exact complement of their positive form; a
// null attribute therefore satisfies ne, not-in, not-like and friends.
func Match(op query.Operator, value ir.Value, operands []ir.Value) (bool, error) {
	value = ir.Unwrap(value)
	operands = query.FlattenValues(operands)

	switch op {
	case query.Null:
		return ir.IsNull(value), nil
	case query.NotNull:
		return !ir.IsNull(value), nil
	case query.NotEqual:
		return negate(Match(query.Equal, value, operands))
	case query.NotLike:
		return negate(Match(query.Like, value, operands))
	case query.DoesNotBeginWith:
		return negate(Match(query.BeginsWith, value, operands))
	case query.DoesNotEndWith:
		return negate(Match(query.EndsWith, value, operands))
	case query.DoesNotContain:
		return negate(Match(query.Contains, value, operands))
	case query.NotIn:
		return negate(Match(query.In, value, operands))
	case query.NotBetween:
		return negate(Match(query.Between, value, operands))
	}

	if err := checkArity(op, operands); err != nil {
		return false, err
	}
	if ir.IsNull(value) {
		return false, nil
	}

	switch op {
	case query.Equal:
		return equal(value, operands[0])
	case query.In:
		for _, operand := range operands {
			ok, err := equal(value, operand)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case query.LessThan, query.LessEqual, query.GreaterThan, query.GreaterEqual:
		cmp, err := compare(value, operands[0])
		if err != nil {
			return false, err
		}
		switch op {
		case query.LessThan:
			return cmp < 0, nil
		case query.LessEqual:
			return cmp <= 0, nil
		case query.GreaterThan:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case query.Between:
		lo, err := compare(value, operands[0])
		if err != nil {
			return false, err
		}
		hi, err := compare(value, operands[1])
		if err != nil {
			return false, err
		}
		return lo >= 0 && hi <= 0, nil
	case query.Like:
		ok, err := matchLike(ir.Text(value), ir.Text(operands[0]))
		if err != nil {
			return false, fault.Newf(fault.CodeMalformedQuery, "invalid like pattern %q: %v", ir.Text(operands[0]), err)
		}
		return ok, nil
	case query.BeginsWith:
		return strings.HasPrefix(fold(ir.Text(value)), fold(ir.Text(operands[0]))), nil
	case query.EndsWith:
		return strings.HasSuffix(fold(ir.Text(value)), fold(ir.Text(operands[0]))), nil
	case query.Contains:
		return strings.Contains(fold(ir.Text(value)), fold(ir.Text(operands[0]))), nil
	}

	return false, fault.Newf(fault.CodeMalformedQuery, "unsupported operator %q", op)
}

func negate(ok bool, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func checkArity(op query.Operator, operands []ir.Value) error {
	min, max := op.Arity()
	if len(operands) < min || (max >= 0 && len(operands) > max) {
		return fault.Newf(fault.CodeMalformedQuery, "operator %s takes %d..%d values, got %d", op, min, max, len(operands))
	}
	return nil
}

// equal compares after coercion; strings compare case-insensitively.
func equal(value, operand ir.Value) (bool, error) {
	coerced, err := coerce(operand, value)
	if err != nil {
		return false, err
	}
	if vs, ok := value.(ir.String); ok {
		if operandText, ok := coerced.(ir.String); ok {
			return fold(string(vs)) == fold(string(operandText)), nil
		}
	}
	return ir.Equal(value, coerced), nil
}

func compare(value, operand ir.Value) (int, error) {
	coerced, err := coerce(operand, value)
	if err != nil {
		return 0, err
	}
	cmp, ok := ir.Compare(value, coerced)
	if !ok {
		return 0, fault.Newf(fault.CodeMalformedQuery,
			"cannot compare %s attribute with %s operand", ir.TypeName(value), ir.TypeName(coerced))
	}
	return cmp, nil
}

func coerce(operand, like ir.Value) (ir.Value, error) {
	coerced, ok := ir.Coerce(operand, like)
	if !ok {
		return nil, fault.Newf(fault.CodeMalformedQuery,
			"value %q is not a valid %s", ir.Text(operand), ir.TypeName(like))
	}
	return coerced, nil
}
