// Package docsql compiles criteria trees into the document-store SQL dialect.
//
// Each leaf kind renders through a fixed template; composites join their
// operands with AND or a parenthesized OR. Values are always bound as named
// parameters (@p1, @p2, ...) numbered in render order, so identical trees
// produce byte-identical text:
//
//	And(Value("message", Equal, "hi"), Value("id", LessThan, "5"))
//	  → message=@p1 AND id<@p2        {"@p1": "hi", "@p2": "5"}
//
// Leaves with the ignore-case flag fold both sides with LOWER(...). Leaves on
// the entity's logical id property render against the physical "id" key.
package docsql
