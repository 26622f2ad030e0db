package relationship

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/orgfake/internal/fault"
	"github.com/roach88/orgfake/internal/ir"
)

// Resolver applies associate and disassociate requests to a store.
type Resolver struct {
	store     RecordStore
	relations Registry
	ids       ir.IDGenerator
	logger    *slog.Logger
}

// NewResolver creates a resolver. A nil ids uses UUIDv7 and a nil logger
// discards output.
func NewResolver(s RecordStore, relations Registry, ids ir.IDGenerator, logger *slog.Logger) *Resolver {
	if ids == nil {
		ids = ir.UUIDv7Generator{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: s, relations: relations, ids: ids, logger: logger}
}

func (r *Resolver) lookup(name string) (*Relationship, error) {
	rel, ok := r.relations.Relationship(name)
	if !ok {
		return nil, fault.RelationshipNotFound(name)
	}
	return rel, nil
}

// Associate relates source to every target. Pairs that are already
// related are left alone.
func (r *Resolver) Associate(ctx context.Context, name string, source ir.EntityRef, targets []ir.EntityRef) error {
	rel, err := r.lookup(name)
	if err != nil {
		return err
	}
	pairs, err := orientAll(ctx, r.store, rel, source, targets)
	if err != nil {
		return err
	}

	for _, p := range pairs {
		var added bool
		switch rel.Type {
		case OneToMany:
			added, err = r.setLookup(ctx, rel, p)
		default:
			added, err = r.insertIntersect(ctx, rel, p)
		}
		if err != nil {
			return fmt.Errorf("associate %s: %w", name, err)
		}
		r.logger.Debug("associate", "relationship", name, "entity1", p.entity1, "entity2", p.entity2, "added", added)
	}
	return nil
}

// Disassociate removes the relation between source and every target.
//
// Only memberships in the orientation the relationship declares are
// removed: an intersect record holding the same two ids in swapped columns
// is a different membership and survives.
func (r *Resolver) Disassociate(ctx context.Context, name string, source ir.EntityRef, targets []ir.EntityRef) error {
	rel, err := r.lookup(name)
	if err != nil {
		return err
	}
	pairs, err := orientAll(ctx, r.store, rel, source, targets)
	if err != nil {
		return err
	}

	for _, p := range pairs {
		var removed int
		switch rel.Type {
		case OneToMany:
			var cleared bool
			if cleared, err = r.clearLookup(ctx, rel, p); cleared {
				removed = 1
			}
		default:
			removed, err = r.deleteIntersect(ctx, rel, p)
		}
		if err != nil {
			return fmt.Errorf("disassociate %s: %w", name, err)
		}
		r.logger.Debug("disassociate", "relationship", name, "entity1", p.entity1, "entity2", p.entity2, "removed", removed)
	}
	return nil
}

// intersects returns the intersect records holding exactly p.
func (r *Resolver) intersects(ctx context.Context, rel *Relationship, p pair) ([]*ir.Record, error) {
	recs, err := r.store.Scan(ctx, rel.IntersectEntity)
	if err != nil {
		return nil, err
	}
	var out []*ir.Record
	for _, rec := range recs {
		if ir.Equal(rec.Get(rel.Entity1Attribute), ir.NewGUID(p.entity1)) &&
			ir.Equal(rec.Get(rel.Entity2Attribute), ir.NewGUID(p.entity2)) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Resolver) insertIntersect(ctx context.Context, rel *Relationship, p pair) (bool, error) {
	existing, err := r.intersects(ctx, rel, p)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	id := r.ids.NewID()
	rec := ir.NewRecord(rel.IntersectEntity, id)
	rec.Set(rel.IntersectEntity+"id", ir.NewGUID(id))
	rec.Set(rel.Entity1Attribute, ir.NewGUID(p.entity1))
	rec.Set(rel.Entity2Attribute, ir.NewGUID(p.entity2))
	return true, r.store.Put(ctx, rec)
}

func (r *Resolver) deleteIntersect(ctx context.Context, rel *Relationship, p pair) (int, error) {
	existing, err := r.intersects(ctx, rel, p)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range existing {
		ok, err := r.store.Delete(ctx, rec.LogicalName, rec.ID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// setLookup points the Entity2 record's lookup at the Entity1 record.
func (r *Resolver) setLookup(ctx context.Context, rel *Relationship, p pair) (bool, error) {
	rec, _, err := r.store.Get(ctx, rel.Entity2LogicalName, p.entity2)
	if err != nil {
		return false, err
	}
	ref := ir.NewRef(rel.Entity1LogicalName, p.entity1)
	if ir.Equal(rec.Get(rel.Entity2Attribute), ref) {
		return false, nil
	}
	rec.Set(rel.Entity2Attribute, ref)
	return true, r.store.Put(ctx, rec)
}

// clearLookup nulls the Entity2 record's lookup when it points at the
// Entity1 record.
func (r *Resolver) clearLookup(ctx context.Context, rel *Relationship, p pair) (bool, error) {
	rec, _, err := r.store.Get(ctx, rel.Entity2LogicalName, p.entity2)
	if err != nil {
		return false, err
	}
	id, ok := ir.IDOf(rec.Get(rel.Entity2Attribute))
	if !ok || id != p.entity1 {
		return false, nil
	}
	rec.Set(rel.Entity2Attribute, ir.Null{})
	return true, r.store.Put(ctx, rec)
}
