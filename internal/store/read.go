package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/ir"
)

// Get returns the record with the given entity and id.
// Returns (nil, false, nil) when the record does not exist.
func (s *Store) Get(ctx context.Context, entity string, id uuid.UUID) (*ir.Record, bool, error) {
	var attrsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT attributes FROM records WHERE entity = ? AND id = ?
	`, entity, id.String()).Scan(&attrsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s(%s): %w", entity, id, err)
	}

	r, err := buildRecord(entity, id.String(), attrsJSON)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Scan returns every record of an entity in insertion order.
// Results are ordered deterministically: ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the entity has no records.
func (s *Store) Scan(ctx context.Context, entity string) ([]*ir.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity, id, attributes
		FROM records
		WHERE entity = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", entity, err)
	}
	defer rows.Close()

	records := []*ir.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", entity, err)
	}

	return records, nil
}

// Count returns the number of records of an entity.
func (s *Store) Count(ctx context.Context, entity string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE entity = ?
	`, entity).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", entity, err)
	}
	return n, nil
}

// Entities returns the distinct entity names that have records, sorted.
func (s *Store) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT entity FROM records ORDER BY entity COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entity name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return names, nil
}
