package metadata

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/orgfake/internal/relationship"
)

// CompileError is a metadata definition problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileEntity parses an entity definition. The logical name is the
// value's last path label.
func CompileEntity(v cue.Value) (*Entity, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	e := &Entity{LogicalName: label(v), OptionSets: map[string]map[int64]string{}}

	var err error
	if e.PrimaryKey, err = optionalString(v, "primary_key"); err != nil {
		return nil, err
	}
	if e.PrimaryKey == "" {
		e.PrimaryKey = e.LogicalName + "id"
	}
	if e.PrimaryName, err = optionalString(v, "primary_name"); err != nil {
		return nil, err
	}

	setsVal := v.LookupPath(cue.ParsePath("option_sets"))
	if !setsVal.Exists() {
		return e, nil
	}
	iter, err := setsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		attr := iter.Label()
		options, err := compileOptions(attr, iter.Value())
		if err != nil {
			return nil, err
		}
		e.OptionSets[attr] = options
	}
	return e, nil
}

func compileOptions(attr string, v cue.Value) (map[int64]string, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "option_sets." + attr,
			Message: "must be a list of {value, label}",
			Pos:     v.Pos(),
		}
	}

	options := map[int64]string{}
	for list.Next() {
		item := list.Value()
		n, err := item.LookupPath(cue.ParsePath("value")).Int64()
		if err != nil {
			return nil, &CompileError{Field: "option_sets." + attr + ".value", Message: "value must be an integer", Pos: item.Pos()}
		}
		text, err := item.LookupPath(cue.ParsePath("label")).String()
		if err != nil {
			return nil, &CompileError{Field: "option_sets." + attr + ".label", Message: "label must be a string", Pos: item.Pos()}
		}
		if _, dup := options[n]; dup {
			return nil, &CompileError{Field: "option_sets." + attr, Message: fmt.Sprintf("duplicate option value %d", n), Pos: item.Pos()}
		}
		options[n] = text
	}
	return options, nil
}

// CompileRelationship parses a relationship definition. The name is the
// value's last path label.
func CompileRelationship(v cue.Value) (*relationship.Relationship, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rel := &relationship.Relationship{Name: label(v)}

	typ, err := optionalString(v, "type")
	if err != nil {
		return nil, err
	}
	switch relationship.Type(typ) {
	case "", relationship.ManyToMany:
		rel.Type = relationship.ManyToMany
	case relationship.OneToMany:
		rel.Type = relationship.OneToMany
	default:
		return nil, &CompileError{Field: "type", Message: fmt.Sprintf("unknown relationship type %q", typ), Pos: v.Pos()}
	}

	if rel.IntersectEntity, err = optionalString(v, "intersect_entity"); err != nil {
		return nil, err
	}
	if rel.Type == relationship.ManyToMany && rel.IntersectEntity == "" {
		rel.IntersectEntity = rel.Name
	}

	if rel.Entity1LogicalName, rel.Entity1Attribute, err = side(v, "entity1"); err != nil {
		return nil, err
	}
	if rel.Entity2LogicalName, rel.Entity2Attribute, err = side(v, "entity2"); err != nil {
		return nil, err
	}

	if err := rel.Validate(); err != nil {
		return nil, &CompileError{Field: "relationship", Message: err.Error(), Pos: v.Pos()}
	}
	return rel, nil
}

func side(v cue.Value, name string) (logicalName, attribute string, err error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return "", "", &CompileError{Field: name, Message: name + " is required", Pos: v.Pos()}
	}
	if logicalName, err = optionalString(sv, "logical_name"); err != nil {
		return "", "", err
	}
	if attribute, err = optionalString(sv, "attribute"); err != nil {
		return "", "", err
	}
	return logicalName, attribute, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].Unquoted()
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
