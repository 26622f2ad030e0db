// Package metadata holds entity metadata and the relationship registry.
//
// Definitions are written in CUE and compiled with the CUE Go API:
//
//	entity: account: {
//		primary_key: "accountid"
//		option_sets: industrycode: [{value: 7, label: "Consulting"}]
//	}
//
//	relationship: teammembership: {
//		type:             "many-to-many"
//		intersect_entity: "teammembership"
//		entity1: {logical_name: "systemuser", attribute: "systemuserid"}
//		entity2: {logical_name: "team", attribute: "teamid"}
//	}
//
// Entities without metadata are still usable: their primary key is the
// logical name followed by "id".
package metadata

import (
	"slices"

	"github.com/roach88/orgfake/internal/relationship"
)

// Entity is the metadata of one entity.
type Entity struct {
	LogicalName string
	PrimaryKey  string
	PrimaryName string
	OptionSets  map[string]map[int64]string
}

// Catalog is a registry of entity metadata and relationships.
// It satisfies engine.Catalog and relationship.Registry.
type Catalog struct {
	entities      map[string]*Entity
	relationships map[string]*relationship.Relationship
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entities:      map[string]*Entity{},
		relationships: map[string]*relationship.Relationship{},
	}
}

// AddEntity registers or replaces entity metadata.
func (c *Catalog) AddEntity(e *Entity) {
	c.entities[e.LogicalName] = e
}

// AddRelationship validates and registers a relationship, replacing any
// relationship of the same name.
func (c *Catalog) AddRelationship(rel *relationship.Relationship) error {
	if err := rel.Validate(); err != nil {
		return err
	}
	c.relationships[rel.Name] = rel
	return nil
}

// Entity returns the metadata registered for an entity.
func (c *Catalog) Entity(logicalName string) (*Entity, bool) {
	e, ok := c.entities[logicalName]
	return e, ok
}

// Relationship returns the relationship registered under name.
func (c *Catalog) Relationship(name string) (*relationship.Relationship, bool) {
	rel, ok := c.relationships[name]
	return rel, ok
}

// PrimaryKey returns the entity's primary key attribute.
func (c *Catalog) PrimaryKey(logicalName string) string {
	if e, ok := c.entities[logicalName]; ok && e.PrimaryKey != "" {
		return e.PrimaryKey
	}
	return logicalName + "id"
}

// OptionLabel returns the label of an option set value.
func (c *Catalog) OptionLabel(logicalName, attribute string, value int64) (string, bool) {
	e, ok := c.entities[logicalName]
	if !ok {
		return "", false
	}
	label, ok := e.OptionSets[attribute][value]
	return label, ok
}

// EntityNames lists registered entities in sorted order.
func (c *Catalog) EntityNames() []string {
	names := make([]string, 0, len(c.entities))
	for name := range c.entities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RelationshipNames lists registered relationships in sorted order.
func (c *Catalog) RelationshipNames() []string {
	names := make([]string, 0, len(c.relationships))
	for name := range c.relationships {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
