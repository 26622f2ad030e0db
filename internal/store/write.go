package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/ir"
)

// ErrInvalidRecord is returned by Put for a record without logical name or id.
var ErrInvalidRecord = errors.New("record requires a logical name and a non-nil id")

// Put inserts or replaces a record.
// Replacing keeps the record's original position in Scan order.
// FormattedValues are display data and are not stored.
func (s *Store) Put(ctx context.Context, r *ir.Record) error {
	return put(ctx, s.db, r)
}

// PutAll stores records in one transaction, in argument order.
// Either every record is stored or none is.
func (s *Store) PutAll(ctx context.Context, recs []*ir.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put all: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, r := range recs {
		if err := put(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put all: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func put(ctx context.Context, db execer, r *ir.Record) error {
	if r == nil || r.LogicalName == "" || r.ID == uuid.Nil {
		return fmt.Errorf("put: %w", ErrInvalidRecord)
	}

	attrsJSON, err := marshalAttributes(r.Attributes)
	if err != nil {
		return fmt.Errorf("put %s(%s): %w", r.LogicalName, r.ID, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO records (entity, id, attributes)
		VALUES (?, ?, ?)
		ON CONFLICT(entity, id) DO UPDATE SET attributes = excluded.attributes
	`, r.LogicalName, r.ID.String(), attrsJSON)
	if err != nil {
		return fmt.Errorf("put %s(%s): %w", r.LogicalName, r.ID, err)
	}

	return nil
}

// Delete removes a record. Returns false when no such record existed.
func (s *Store) Delete(ctx context.Context, entity string, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE entity = ? AND id = ?
	`, entity, id.String())
	if err != nil {
		return false, fmt.Errorf("delete %s(%s): %w", entity, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s(%s): %w", entity, id, err)
	}
	return n > 0, nil
}

// Truncate removes every record.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
