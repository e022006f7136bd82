package criteria

import "slices"

// Node is one vertex of a criteria tree.
//
// This is a sealed interface - only *Leaf and *Composite implement it.
// The marker method keeps compilers and searches exhaustive: a type switch
// over the two variants covers every possible node.
type Node interface {
	// Kind returns the operator of this node.
	Kind() Kind

	criteriaNode() // Marker method - seals interface to this package
}

// Leaf is a single field-level predicate.
//
// Semantics:
//
//	<field> <kind> <values...>
//
// Values are ordered and their count depends on the kind: two for BETWEEN,
// a single sequence for IN/NOT_IN, none for the existence and nullability
// kinds, one otherwise. Arity is enforced when the leaf is compiled, not
// when it is built.
//
// Example:
//
//	Value("message", Containing, []any{"hello"}, true)
//
// renders as
//
//	CONTAINS(LOWER(message),LOWER(@p1))
type Leaf struct {
	field      string
	kind       Kind
	values     []any
	ignoreCase bool
}

func (*Leaf) criteriaNode() {}

// Kind returns the leaf operator.
func (l *Leaf) Kind() Kind { return l.kind }

// Field returns the logical field path the predicate applies to.
func (l *Leaf) Field() string { return l.field }

// IgnoreCase reports whether field and values are case-folded when compiled.
func (l *Leaf) IgnoreCase() bool { return l.ignoreCase }

// Values returns a copy of the bound values in order.
func (l *Leaf) Values() []any { return slices.Clone(l.values) }

// NumValues returns the number of bound values without copying them.
func (l *Leaf) NumValues() int { return len(l.values) }

// Composite joins two sub-trees with AND or OR.
//
// Composite nodes never carry a field or values, and own their children
// exclusively: the tree is strictly binary with no sharing.
type Composite struct {
	kind  Kind
	left  Node
	right Node
}

func (*Composite) criteriaNode() {}

// Kind returns AndCondition or OrCondition.
func (c *Composite) Kind() Kind { return c.kind }

// Left returns the first operand.
func (c *Composite) Left() Node { return c.left }

// Right returns the second operand.
func (c *Composite) Right() Node { return c.right }

// Value creates a leaf predicate on field.
// The values slice is copied; later changes to it do not affect the leaf.
func Value(field string, kind Kind, values []any, ignoreCase bool) *Leaf {
	return &Leaf{
		field:      field,
		kind:       kind,
		values:     slices.Clone(values),
		ignoreCase: ignoreCase,
	}
}

// And combines left and right so that both must hold.
func And(left, right Node) *Composite {
	return &Composite{kind: AndCondition, left: left, right: right}
}

// Or combines left and right so that either may hold.
func Or(left, right Node) *Composite {
	return &Composite{kind: OrCondition, left: left, right: right}
}
