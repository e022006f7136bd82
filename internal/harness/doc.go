// Package harness runs conformance scenarios for derived queries.
//
// A scenario loads an entity from a CUE specs directory, seeds an in-memory
// document store, and calls derived methods, checking the compiled
// statement, the selected documents, or the error code of each call.
//
// # Scenario Format
//
//	name: derived_queries
//	description: "What this scenario validates"
//	specs: ../specs
//	entity: QueryTest
//	documents:
//	  - { id: "1", message: "Hello world", date: 30 }
//	steps:
//	  - call: findByMessageContaining
//	    args: [hello]
//	    expect:
//	      sql: "SELECT * FROM ROOT r WHERE CONTAINS(LOWER(r.message),LOWER(@p1))"
//	      params: { "@p1": hello }
//	      ids: ["1"]
//	  - call: findByIdIn
//	    args: [solo]
//	    expect:
//	      error: INVALID_OPERAND_SHAPE
//	assertions:
//	  - type: constrains
//	    method: findByIdIn
//	    field: id
//	    want: true
//
// Setting ids or count executes the statement against the store; otherwise a
// step only compiles. Step results can be snapshotted with RunWithGolden.
package harness
