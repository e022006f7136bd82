package criteria

// Find returns every leaf in the tree rooted at root whose field equals
// field exactly, in pre-order (left subtree before right).
//
// The result is never nil; a tree that does not mention field yields an
// empty slice. Find keeps no state between calls.
func Find(root Node, field string) []*Leaf {
	matched := []*Leaf{}
	return collect(root, field, matched)
}

// Constrains reports whether any leaf in the tree applies to field.
func Constrains(root Node, field string) bool {
	return len(Find(root, field)) > 0
}

// collect appends matching leaves under n to acc.
func collect(n Node, field string, acc []*Leaf) []*Leaf {
	switch node := n.(type) {
	case *Leaf:
		if node.field == field {
			acc = append(acc, node)
		}
	case *Composite:
		acc = collect(node.left, field, acc)
		acc = collect(node.right, field, acc)
	}
	return acc
}
