package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/ir"
)

// marshalAttributes converts an attribute bag to canonical tagged JSON TEXT.
func marshalAttributes(attrs ir.Attributes) (string, error) {
	if attrs == nil {
		attrs = ir.Attributes{}
	}
	data, err := ir.EncodeAttributes(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses canonical tagged JSON TEXT.
func unmarshalAttributes(data string) (ir.Attributes, error) {
	if data == "" || data == "{}" {
		return ir.Attributes{}, nil
	}
	attrs, err := ir.DecodeAttributes([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}

// scanRecord reads one records row (entity, id, attributes).
func scanRecord(rows *sql.Rows) (*ir.Record, error) {
	var entity, idText, attrsJSON string
	if err := rows.Scan(&entity, &idText, &attrsJSON); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return buildRecord(entity, idText, attrsJSON)
}

func buildRecord(entity, idText, attrsJSON string) (*ir.Record, error) {
	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("record %s: bad id %q: %w", entity, idText, err)
	}
	attrs, err := unmarshalAttributes(attrsJSON)
	if err != nil {
		return nil, fmt.Errorf("record %s(%s): %w", entity, idText, err)
	}
	r := ir.NewRecord(entity, id)
	r.Attributes = attrs
	return r, nil
}
