package ir

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Equal reports whether two attribute values are equal.
//
// Equality rules:
//   - Aliased wrappers are stripped before comparing
//   - Null equals only Null (a nil Value reads as Null)
//   - Int and Decimal compare numerically
//   - GUID equals an EntityRef carrying the same id (join keys mix both)
//   - OptionSet and EntityRef ignore their display names
func Equal(a, b Value) bool {
	a, b = Unwrap(a), Unwrap(b)

	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}

	if aID, ok := IDOf(a); ok {
		bID, ok := IDOf(b)
		if !ok || aID != bID {
			return false
		}
		// Two references must also agree on the target entity
		ar, aIsRef := a.(EntityRef)
		br, bIsRef := b.(EntityRef)
		if aIsRef && bIsRef {
			return ar.LogicalName == br.LogicalName
		}
		return true
	}

	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int, Decimal:
		cmp, ok := compareNumeric(a, b)
		return ok && cmp == 0
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case DateTime:
		bv, ok := b.(DateTime)
		return ok && av.Time.Equal(bv.Time)
	case OptionSet:
		switch bv := b.(type) {
		case OptionSet:
			return av.Value == bv.Value
		case Int:
			return av.Value == int64(bv)
		}
		return false
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values by the natural ordering of their runtime type.
//
// Returns (cmp, true) where cmp is -1, 0 or 1, or (0, false) when the values
// are not comparable (e.g. a string against a number). Nulls sort before
// every non-null value. Strings compare ordinally (UTF-16 code units, no case
// folding).
func Compare(a, b Value) (int, bool) {
	a, b = Unwrap(a), Unwrap(b)

	aNull, bNull := IsNull(a), IsNull(b)
	switch {
	case aNull && bNull:
		return 0, true
	case aNull:
		return -1, true
	case bNull:
		return 1, true
	}

	switch av := a.(type) {
	case String:
		if bv, ok := b.(String); ok {
			return CompareOrdinal(string(av), string(bv)), true
		}
	case Int, Decimal:
		return compareNumeric(a, b)
	case Bool:
		if bv, ok := b.(Bool); ok {
			return compareBool(bool(av), bool(bv)), true
		}
	case DateTime:
		if bv, ok := b.(DateTime); ok {
			return av.Time.Compare(bv.Time), true
		}
	case OptionSet:
		switch bv := b.(type) {
		case OptionSet:
			return compareInt64(av.Value, bv.Value), true
		case Int:
			return compareInt64(av.Value, int64(bv)), true
		}
	case GUID, EntityRef:
		aID, _ := IDOf(a)
		if bID, ok := IDOf(b); ok {
			return bytes.Compare(aID[:], bID[:]), true
		}
	}
	return 0, false
}

// CompareOrdinal compares strings by UTF-16 code units.
// Go's native string comparison uses UTF-8 bytes, which orders supplementary
// characters differently from the emulated service.
func CompareOrdinal(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// Shorter string comes first when all compared units are equal
	return compareInt64(int64(len(a16)), int64(len(b16)))
}

// compareNumeric compares Int and Decimal values (in any combination).
func compareNumeric(a, b Value) (int, bool) {
	ad, ok := asDecimal(a)
	if !ok {
		return 0, false
	}
	bd, ok := asDecimal(b)
	if !ok {
		return 0, false
	}
	return ad.Apd().Cmp(bd.Apd()), true
}

// asDecimal widens Int and OptionSet to Decimal.
func asDecimal(v Value) (Decimal, bool) {
	switch val := v.(type) {
	case Int:
		return DecimalFromInt(int64(val)), true
	case OptionSet:
		return DecimalFromInt(val.Value), true
	case Decimal:
		return val, true
	default:
		return Decimal{}, false
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Coerce converts a literal operand to the runtime type of like.
//
// Operands arriving from the XML dialect are always String; the evaluator
// calls Coerce with the stored attribute value so "5" compares as a number
// against an Int column and "{GUID}" as an id against a lookup. Returns the
// operand unchanged (and true) when no conversion is needed, and false when
// the literal cannot be represented in the target type.
func Coerce(operand, like Value) (Value, bool) {
	operand = Unwrap(operand)
	like = Unwrap(like)

	s, isString := operand.(String)
	if !isString || IsNull(like) {
		return operand, true
	}

	text := strings.TrimSpace(string(s))
	switch like.(type) {
	case String:
		return operand, true
	case Int:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			// Decimal literal compared against an integer column
			d, derr := NewDecimal(text)
			if derr != nil {
				return nil, false
			}
			return d, true
		}
		return Int(n), true
	case Decimal:
		d, err := NewDecimal(text)
		if err != nil {
			return nil, false
		}
		return d, true
	case Bool:
		switch strings.ToLower(text) {
		case "1", "true":
			return Bool(true), true
		case "0", "false":
			return Bool(false), true
		}
		return nil, false
	case DateTime:
		t, ok := parseTime(text)
		if !ok {
			return nil, false
		}
		return NewDateTime(t), true
	case GUID, EntityRef:
		id, err := uuid.Parse(strings.Trim(text, "{}"))
		if err != nil {
			return nil, false
		}
		return GUID(id), true
	case OptionSet:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, false
		}
		return OptionSet{Value: n}, true
	}
	return operand, true
}

// parseTime accepts the date formats used in query literals.
func parseTime(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
