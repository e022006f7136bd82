// Package criteria provides the predicate tree shared by derived-query
// classification and document-SQL compilation.
//
// ARCHITECTURE:
//
//	[method parts] → derive.Creator → [criteria.Node] → docsql.Compiler → (text, @p bindings)
//	                                        ↓
//	                                  criteria.Find
//
// A tree is made of two node variants:
//   - Leaf: one field-level predicate (field, kind, ordered values, ignore-case flag)
//   - Composite: AND or OR of exactly two child nodes
//
// SEALED INTERFACE:
//
// Node is sealed with a marker method so only *Leaf and *Composite implement
// it. Consumers switch on the concrete type and treat anything else as a bug:
//
//	switch n := node.(type) {
//	case *Leaf:
//	    // render predicate
//	case *Composite:
//	    // recurse into n.Left(), n.Right()
//	default:
//	    // impossible outside this package
//	}
//
// IMMUTABILITY:
//
// Trees are values once built. Constructors copy the supplied values slice
// and accessors return copies, so one tree can be compiled concurrently by
// any number of goroutines.
package criteria
