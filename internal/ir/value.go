package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Value is a sealed interface representing an attribute value.
// Only the types declared in this file implement it.
// NO float type - use Int or Decimal (floats break deterministic equality).
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents an explicit null attribute value.
// Using an explicit type ensures every Value satisfies the sealed interface.
type Null struct{}

func (Null) irValue() {}

// String represents a text value.
type String string

func (String) irValue() {}

// Int represents a whole number (int64, never float64).
type Int int64

func (Int) irValue() {}

// Bool represents a two-option value.
type Bool bool

func (Bool) irValue() {}

// Decimal represents an arbitrary-precision decimal (money, decimal, double
// attributes). The wrapped apd.Decimal is never mutated after construction.
type Decimal struct {
	d *apd.Decimal
}

func (Decimal) irValue() {}

// DateTime represents a point in time. Always stored in UTC.
type DateTime struct {
	time.Time
}

func (DateTime) irValue() {}

// GUID represents a unique identifier attribute value.
type GUID uuid.UUID

func (GUID) irValue() {}

// EntityRef is a lookup value pointing at another record.
// Name is display data only and never takes part in equality.
type EntityRef struct {
	LogicalName string
	ID          uuid.UUID
	Name        string
}

func (EntityRef) irValue() {}

// OptionSet is an enumerated value. Name is the symbolic name used as the
// formatted value; it is optional and never takes part in equality.
type OptionSet struct {
	Value int64
	Name  string
}

func (OptionSet) irValue() {}

// Aliased wraps a value projected from a linked entity.
// Alias is the link alias and Attribute the attribute on the linked entity.
type Aliased struct {
	Alias     string
	Attribute string
	Value     Value
}

func (Aliased) irValue() {}

// List is an operand list (In, NotIn, Between). Never stored on records.
type List []Value

func (List) irValue() {}

// NewString creates a String value.
func NewString(s string) String {
	return String(s)
}

// NewInt creates an Int value.
func NewInt(n int64) Int {
	return Int(n)
}

// NewBool creates a Bool value.
func NewBool(b bool) Bool {
	return Bool(b)
}

// NewDateTime creates a DateTime normalized to UTC.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC()}
}

// NewGUID creates a GUID value.
func NewGUID(id uuid.UUID) GUID {
	return GUID(id)
}

// NewRef creates an EntityRef value.
func NewRef(logicalName string, id uuid.UUID) EntityRef {
	return EntityRef{LogicalName: logicalName, ID: id}
}

// NewOptionSet creates an OptionSet value with a symbolic name.
func NewOptionSet(value int64, name string) OptionSet {
	return OptionSet{Value: value, Name: name}
}

// NewAliased creates an Aliased value.
func NewAliased(alias, attribute string, v Value) Aliased {
	return Aliased{Alias: alias, Attribute: attribute, Value: v}
}

// NewList creates a List from values.
func NewList(vals ...Value) List {
	return List(vals)
}

// NewDecimal parses a decimal literal such as "12.50".
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return Decimal{d: d}, nil
}

// MustDecimal is like NewDecimal but panics on error.
// Use only in tests or for literals known to be valid.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromInt converts an int64 to a Decimal.
func DecimalFromInt(n int64) Decimal {
	return Decimal{d: apd.New(n, 0)}
}

// DecimalFromApd copies an apd.Decimal into a Decimal value.
func DecimalFromApd(d *apd.Decimal) Decimal {
	return Decimal{d: new(apd.Decimal).Set(d)}
}

// Apd returns a copy of the underlying decimal. The zero Decimal reads as 0.
func (d Decimal) Apd() *apd.Decimal {
	if d.d == nil {
		return new(apd.Decimal)
	}
	return new(apd.Decimal).Set(d.d)
}

// String renders the decimal without exponent notation.
func (d Decimal) String() string {
	if d.d == nil {
		return "0"
	}
	return d.d.Text('f')
}

// String renders the GUID in its lowercase hyphenated form.
func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// IsNull reports whether v is nil, Null, or an Aliased wrapper around null.
func IsNull(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case Null:
		return true
	case Aliased:
		return IsNull(val.Value)
	default:
		return false
	}
}

// Unwrap strips Aliased wrappers and maps nil to Null.
func Unwrap(v Value) Value {
	for {
		switch val := v.(type) {
		case nil:
			return Null{}
		case Aliased:
			v = val.Value
		default:
			return v
		}
	}
}

// IDOf returns the identifier carried by a GUID or EntityRef value.
func IDOf(v Value) (uuid.UUID, bool) {
	switch val := Unwrap(v).(type) {
	case GUID:
		return uuid.UUID(val), true
	case EntityRef:
		return val.ID, true
	default:
		return uuid.Nil, false
	}
}

// Text renders a value for display (CLI tables, spreadsheet cells).
// Null renders as the empty string.
func Text(v Value) string {
	switch val := Unwrap(v).(type) {
	case Null:
		return ""
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Decimal:
		return val.String()
	case DateTime:
		return val.Time.Format(time.RFC3339)
	case GUID:
		return val.String()
	case EntityRef:
		if val.Name != "" {
			return val.Name
		}
		return val.ID.String()
	case OptionSet:
		if val.Name != "" {
			return val.Name
		}
		return strconv.FormatInt(val.Value, 10)
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Text(elem)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// TypeName returns the tag used for a value in tagged JSON and diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Decimal:
		return "decimal"
	case DateTime:
		return "datetime"
	case GUID:
		return "guid"
	case EntityRef:
		return "ref"
	case OptionSet:
		return "option"
	case Aliased:
		return "aliased"
	case List:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}
