package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/orgfake/internal/fixture"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/relationship"
)

// Scenario is a seeded store plus a sequence of steps.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Metadata is a CUE metadata directory. LoadScenario resolves it
	// relative to the scenario file.
	Metadata string `yaml:"metadata,omitempty"`

	// Relationships are registered in addition to those in Metadata.
	Relationships []RelationshipSpec `yaml:"relationships,omitempty"`

	// MaxRetrieveCount overrides the default page size when positive.
	MaxRetrieveCount int `yaml:"max_retrieve_count,omitempty"`

	// Records seed the store in order.
	Records []fixture.RecordSpec `yaml:"records,omitempty"`

	Steps []Step `yaml:"steps"`
}

// RelationshipSpec registers a relationship inline.
type RelationshipSpec struct {
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type,omitempty"`
	IntersectEntity string   `yaml:"intersect_entity,omitempty"`
	Entity1         SideSpec `yaml:"entity1"`
	Entity2         SideSpec `yaml:"entity2"`
}

// SideSpec is one side of a relationship.
type SideSpec struct {
	LogicalName string `yaml:"logical_name"`
	Attribute   string `yaml:"attribute"`
}

// Relationship builds the relationship descriptor. Type defaults to many-to-many and the
// intersect entity to the relationship name.
func (s RelationshipSpec) Relationship() *relationship.Relationship {
	rel := &relationship.Relationship{
		Name:               s.Name,
		Type:               relationship.Type(s.Type),
		IntersectEntity:    s.IntersectEntity,
		Entity1LogicalName: s.Entity1.LogicalName,
		Entity1Attribute:   s.Entity1.Attribute,
		Entity2LogicalName: s.Entity2.LogicalName,
		Entity2Attribute:   s.Entity2.Attribute,
	}
	if rel.Type == "" {
		rel.Type = relationship.ManyToMany
	}
	if rel.IntersectEntity == "" && rel.Type == relationship.ManyToMany {
		rel.IntersectEntity = s.Name
	}
	return rel
}

// Step is one operation. Exactly one of Query, Associate and Disassociate
// is set.
type Step struct {
	Name         string             `yaml:"name,omitempty"`
	Query        *fixture.QuerySpec `yaml:"query,omitempty"`
	Associate    *RelateSpec        `yaml:"associate,omitempty"`
	Disassociate *RelateSpec        `yaml:"disassociate,omitempty"`
	Expect       *Expect            `yaml:"expect,omitempty"`
}

// Kind names the operation the step performs.
func (s Step) Kind() string {
	switch {
	case s.Query != nil:
		return KindQuery
	case s.Associate != nil:
		return KindAssociate
	case s.Disassociate != nil:
		return KindDisassociate
	default:
		return ""
	}
}

// RelateSpec is the argument of an associate or disassociate step.
type RelateSpec struct {
	Relationship string    `yaml:"relationship"`
	Source       RefSpec   `yaml:"source"`
	Targets      []RefSpec `yaml:"targets"`
}

// RefSpec references a record.
type RefSpec struct {
	Entity string `yaml:"entity"`
	ID     string `yaml:"id"`
}

// Ref parses the reference.
func (r RefSpec) Ref() (ir.EntityRef, error) {
	if r.Entity == "" {
		return ir.EntityRef{}, fmt.Errorf("entity is required")
	}
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return ir.EntityRef{}, fmt.Errorf("id %q: %w", r.ID, err)
	}
	return ir.NewRef(r.Entity, id), nil
}

// Expect lists the checks for one step. Unset fields are not checked.
type Expect struct {
	Count         *int     `yaml:"count,omitempty"`
	NameAttribute string   `yaml:"name_attribute,omitempty"`
	Names         []string `yaml:"names,omitempty"`
	MoreRecords   *bool    `yaml:"more_records,omitempty"`
	Total         *int     `yaml:"total,omitempty"`
	Cookie        *string  `yaml:"cookie,omitempty"`
	Error         string   `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Metadata != "" && !filepath.IsAbs(scenario.Metadata) {
		scenario.Metadata = filepath.Join(filepath.Dir(path), scenario.Metadata)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.MaxRetrieveCount < 0 {
		return fmt.Errorf("max_retrieve_count must not be negative")
	}

	for i, spec := range s.Relationships {
		if err := spec.Relationship().Validate(); err != nil {
			return fmt.Errorf("relationships[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	set := 0
	for _, present := range []bool{step.Query != nil, step.Associate != nil, step.Disassociate != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of query, associate or disassociate is required")
	}

	relate := step.Associate
	if relate == nil {
		relate = step.Disassociate
	}
	if relate != nil {
		if relate.Relationship == "" {
			return fmt.Errorf("relationship is required")
		}
		if _, err := relate.Source.Ref(); err != nil {
			return fmt.Errorf("source: %w", err)
		}
		if len(relate.Targets) == 0 {
			return fmt.Errorf("targets list is required and must be non-empty")
		}
		for i, target := range relate.Targets {
			if _, err := target.Ref(); err != nil {
				return fmt.Errorf("targets[%d]: %w", i, err)
			}
		}
	}

	if step.Expect != nil && step.Kind() != KindQuery {
		e := step.Expect
		if e.Count != nil || e.Names != nil || e.MoreRecords != nil || e.Total != nil || e.Cookie != nil {
			return fmt.Errorf("%s steps only support expect.error", step.Kind())
		}
	}
	return nil
}
