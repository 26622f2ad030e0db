// Package fixture reads seed records and query descriptors from YAML.
//
// A record file:
//
//	records:
//	  - entity: contact
//	    id: 6a2b4a43-6e4b-4b9e-9d3c-2d1a5f1e0b01
//	    attributes:
//	      firstname: Bob
//	      parentcustomerid: {ref: {entity: account, id: "..."}}
//
// Unknown keys are rejected so typos fail loudly.
package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/orgfake/internal/ir"
)

// RecordSpec is one seed record.
type RecordSpec struct {
	Entity     string           `yaml:"entity"`
	ID         string           `yaml:"id,omitempty"`
	Attributes map[string]Value `yaml:"attributes"`
}

// Record builds the record. A missing id stays uuid.Nil so the service
// assigns one.
func (r RecordSpec) Record() (*ir.Record, error) {
	if r.Entity == "" {
		return nil, errors.New("entity is required")
	}
	var id uuid.UUID
	if r.ID != "" {
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", r.ID, err)
		}
		id = parsed
	}
	rec := ir.NewRecord(r.Entity, id)
	for name, v := range r.Attributes {
		rec.Set(name, v.Value)
	}
	return rec, nil
}

type recordFile struct {
	Records []RecordSpec `yaml:"records"`
}

// LoadRecords reads a record file.
func LoadRecords(path string) ([]*ir.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	recs, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// ParseRecords decodes record YAML. Records keep file order.
func ParseRecords(data []byte) ([]*ir.Record, error) {
	var file recordFile
	if err := decodeStrict(data, &file); err != nil {
		return nil, err
	}
	return BuildRecords(file.Records)
}

// BuildRecords converts record specs, reporting the first bad entry.
func BuildRecords(specs []RecordSpec) ([]*ir.Record, error) {
	recs := make([]*ir.Record, 0, len(specs))
	for i, spec := range specs {
		rec, err := spec.Record()
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
