package ir

import (
	"slices"

	"github.com/google/uuid"
)

// Attributes maps attribute logical names to values.
// Keys are case-sensitive. Use SortedKeys() for deterministic iteration.
type Attributes map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (a Attributes) SortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareOrdinal)
	return keys
}

// Clone returns a shallow copy. Values are immutable so sharing them is safe.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Record is an identified attribute bag of one entity type.
//
// FormattedValues holds display strings keyed by attribute name. It is
// populated lazily by the result post-processor and never compared.
type Record struct {
	LogicalName     string
	ID              uuid.UUID
	Attributes      Attributes
	FormattedValues map[string]string
}

// NewRecord creates an empty record.
func NewRecord(logicalName string, id uuid.UUID) *Record {
	return &Record{
		LogicalName:     logicalName,
		ID:              id,
		Attributes:      Attributes{},
		FormattedValues: map[string]string{},
	}
}

// Get returns the attribute value, or Null when the attribute is absent.
// Missing and explicitly-null attributes are indistinguishable through Get.
func (r *Record) Get(attribute string) Value {
	if r == nil {
		return Null{}
	}
	v, ok := r.Attributes[attribute]
	if !ok || v == nil {
		return Null{}
	}
	return v
}

// Has reports whether the attribute key is present (even when null).
func (r *Record) Has(attribute string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Attributes[attribute]
	return ok
}

// Set assigns an attribute value. A nil value is stored as Null.
func (r *Record) Set(attribute string, v Value) *Record {
	if r.Attributes == nil {
		r.Attributes = Attributes{}
	}
	if v == nil {
		v = Null{}
	}
	r.Attributes[attribute] = v
	return r
}

// Ref returns a reference to this record.
func (r *Record) Ref() EntityRef {
	return EntityRef{LogicalName: r.LogicalName, ID: r.ID}
}

// Clone returns a copy that shares no maps with the receiver.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	formatted := make(map[string]string, len(r.FormattedValues))
	for k, v := range r.FormattedValues {
		formatted[k] = v
	}
	return &Record{
		LogicalName:     r.LogicalName,
		ID:              r.ID,
		Attributes:      r.Attributes.Clone(),
		FormattedValues: formatted,
	}
}
