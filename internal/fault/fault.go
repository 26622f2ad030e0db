// Package fault constructs the errors surfaced to callers of the emulated
// service.
//
// Every failure the service reports is a *Fault carrying a Code. Callers
// classify errors with the Is* helpers or CodeOf, which see through
// fmt.Errorf("...: %w") wrapping.
package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes faults.
type Code string

const (
	// CodeUnsupportedQueryKind indicates a query descriptor shape the
	// normalizer does not recognize.
	CodeUnsupportedQueryKind Code = "UNSUPPORTED_QUERY_KIND"

	// CodeRelationshipNotFound indicates an unregistered relationship name.
	CodeRelationshipNotFound Code = "RELATIONSHIP_NOT_FOUND"

	// CodeEntityNotFound indicates a referenced record does not exist.
	CodeEntityNotFound Code = "ENTITY_NOT_FOUND"

	// CodeMalformedQuery indicates a query that cannot be parsed or
	// evaluated (XML syntax, unknown operator, bad operand arity).
	CodeMalformedQuery Code = "MALFORMED_QUERY"

	// CodeInvalidArgument indicates a missing or invalid call argument.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// Fault is an error reported by the emulated service.
type Fault struct {
	// Code identifies the fault category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains additional context (entity, id, relationship...).
	Details map[string]string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if len(f.Details) == 0 {
		return fmt.Sprintf("%s: %s", f.Code, f.Message)
	}
	keys := make([]string, 0, len(f.Details))
	for k := range f.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + f.Details[k]
	}
	return fmt.Sprintf("%s: %s (%s)", f.Code, f.Message, strings.Join(parts, ", "))
}

// New creates a Fault.
func New(code Code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Newf creates a Fault with a formatted message.
func Newf(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// With returns the fault with an added detail.
func (f *Fault) With(key, value string) *Fault {
	if f.Details == nil {
		f.Details = map[string]string{}
	}
	f.Details[key] = value
	return f
}

// CodeOf returns the code of the first Fault in err's chain, or "" when
// err is not a Fault.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return ""
}

// IsUnsupportedQueryKind returns true if the error is an unsupported query kind fault.
func IsUnsupportedQueryKind(err error) bool {
	return CodeOf(err) == CodeUnsupportedQueryKind
}

// IsRelationshipNotFound returns true if the error is a missing relationship fault.
func IsRelationshipNotFound(err error) bool {
	return CodeOf(err) == CodeRelationshipNotFound
}

// IsEntityNotFound returns true if the error is a missing record fault.
func IsEntityNotFound(err error) bool {
	return CodeOf(err) == CodeEntityNotFound
}

// IsMalformedQuery returns true if the error is a malformed query fault.
func IsMalformedQuery(err error) bool {
	return CodeOf(err) == CodeMalformedQuery
}

// IsInvalidArgument returns true if the error is an invalid argument fault.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// UnsupportedQueryKind creates the fault for an unrecognized query shape.
func UnsupportedQueryKind(q any) *Fault {
	return Newf(CodeUnsupportedQueryKind, "unsupported query kind %T", q)
}

// RelationshipNotFound creates the fault for an unregistered relationship.
func RelationshipNotFound(name string) *Fault {
	return Newf(CodeRelationshipNotFound, "relationship %q does not exist in the metadata cache", name).
		With("relationship", name)
}

// EntityNotFound creates the fault for a missing record.
func EntityNotFound(logicalName, id string) *Fault {
	return Newf(CodeEntityNotFound, "%s with id %s does not exist", logicalName, id).
		With("entity", logicalName).
		With("id", id)
}
