// Package relationship associates and disassociates records.
//
// Many-to-many memberships are intersect records holding the two member
// ids. One-to-many memberships are a lookup attribute on the "many" side
// record. Callers may pass the two sides in either order; Orient maps them
// onto the relationship's declared sides.
package relationship

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
)

// Type is the cardinality of a relationship.
type Type string

const (
	ManyToMany Type = "many-to-many"
	OneToMany  Type = "one-to-many"
)

// Relationship describes how two entities are related.
//
// For ManyToMany, IntersectEntity records carry Entity1Attribute (an
// Entity1 id) and Entity2Attribute (an Entity2 id). For OneToMany, Entity1
// is the "one" side, Entity1Attribute its primary key, and
// Entity2Attribute the lookup on Entity2 records pointing at Entity1.
type Relationship struct {
	Name               string
	Type               Type
	IntersectEntity    string
	Entity1LogicalName string
	Entity1Attribute   string
	Entity2LogicalName string
	Entity2Attribute   string
}

// Validate reports a descriptor missing a field its type needs.
func (r *Relationship) Validate() error {
	missing := func(field string) error {
		return fault.Newf(fault.CodeInvalidArgument, "relationship %q: missing %s", r.Name, field).
			With("relationship", r.Name)
	}
	switch {
	case r.Name == "":
		return fault.New(fault.CodeInvalidArgument, "relationship has no name")
	case r.Entity1LogicalName == "":
		return missing("entity1 logical name")
	case r.Entity2LogicalName == "":
		return missing("entity2 logical name")
	case r.Entity2Attribute == "":
		return missing("entity2 attribute")
	}

	switch r.Type {
	case ManyToMany:
		if r.IntersectEntity == "" {
			return missing("intersect entity")
		}
		if r.Entity1Attribute == "" {
			return missing("entity1 attribute")
		}
	case OneToMany:
	default:
		return fault.Newf(fault.CodeInvalidArgument, "relationship %q: unknown type %q", r.Name, r.Type)
	}
	return nil
}

// Orient maps a (source, target) pair onto the relationship's sides and
// returns the Entity1 id and the Entity2 id.
//
// The target's type is checked first, so a source whose type is misspelled
// still orients by its partner. For self-referential relationships both
// checks pass and the source is Entity1.
func Orient(rel *Relationship, source, target ir.EntityRef) (entity1, entity2 uuid.UUID, err error) {
	switch {
	case target.LogicalName == rel.Entity2LogicalName:
		return source.ID, target.ID, nil
	case target.LogicalName == rel.Entity1LogicalName:
		return target.ID, source.ID, nil
	case source.LogicalName == rel.Entity1LogicalName:
		return source.ID, target.ID, nil
	case source.LogicalName == rel.Entity2LogicalName:
		return target.ID, source.ID, nil
	}
	return uuid.Nil, uuid.Nil, fault.Newf(fault.CodeInvalidArgument,
		"neither %s nor %s takes part in relationship %q", source.LogicalName, target.LogicalName, rel.Name).
		With("relationship", rel.Name)
}

// Registry looks up relationships by name.
type Registry interface {
	Relationship(name string) (*Relationship, bool)
}

// RecordStore is the record access the resolver needs.
// *store.Store satisfies it.
type RecordStore interface {
	Get(ctx context.Context, entity string, id uuid.UUID) (*ir.Record, bool, error)
	Put(ctx context.Context, r *ir.Record) error
	Delete(ctx context.Context, entity string, id uuid.UUID) (bool, error)
	Scan(ctx context.Context, entity string) ([]*ir.Record, error)
}

// pair is one oriented membership.
type pair struct {
	entity1 uuid.UUID
	entity2 uuid.UUID
}

// orientAll orients every target against source and checks both records
// exist under the relationship's declared entity names.
func orientAll(ctx context.Context, s RecordStore, rel *Relationship, source ir.EntityRef, targets []ir.EntityRef) ([]pair, error) {
	pairs := make([]pair, 0, len(targets))
	for _, target := range targets {
		e1, e2, err := Orient(rel, source, target)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s, rel.Entity1LogicalName, e1); err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s, rel.Entity2LogicalName, e2); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair{entity1: e1, entity2: e2})
	}
	return pairs, nil
}

func mustExist(ctx context.Context, s RecordStore, entity string, id uuid.UUID) error {
	_, ok, err := s.Get(ctx, entity, id)
	if err != nil {
		return fmt.Errorf("get %s %s: %w", entity, id, err)
	}
	if !ok {
		return fault.EntityNotFound(entity, id.String())
	}
	return nil
}
