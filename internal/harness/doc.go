// Package harness runs YAML scenarios against a fresh service and
// snapshots every query result.
//
// # Scenario Format
//
//	name: team_membership
//	description: "Disassociate accepts either argument order"
//	metadata: ../metadata          # optional CUE directory, relative to this file
//	relationships:                 # inline registrations
//	  - name: teammembership_association
//	    intersect_entity: teammembership
//	    entity1: {logical_name: systemuser, attribute: systemuserid}
//	    entity2: {logical_name: team, attribute: teamid}
//	records:                       # seed records, fixture format
//	  - entity: systemuser
//	    id: 00000000-0000-0000-0000-000000000001
//	steps:
//	  - name: join
//	    associate:
//	      relationship: teammembership_association
//	      source: {entity: team, id: ...}
//	      targets: [{entity: systemuser, id: ...}]
//	  - name: members
//	    query:                     # fixture query format
//	      entity: teammembership
//	      columns: [teamid]
//	    expect:
//	      count: 1
//
// # Expectations
//
// An expect clause checks any of: count, names (the name_attribute column
// of each record in order, default "name"), more_records, total, cookie and
// error (a fault code such as MALFORMED_QUERY). A step that fails without
// an expected error fails the scenario.
//
// # Deterministic Testing
//
// Each run uses an in-memory store, sequential record ids and a
// deterministic version clock, so the same scenario always produces the
// same snapshot. Snapshots are canonical JSON compared against
// testdata/golden with goldie.
package harness
