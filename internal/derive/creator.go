package derive

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
)

// criteriaLookup is the fixed fragment → operator table.
// TRUE and FALSE are handled before the lookup.
var criteriaLookup = map[PartType]criteria.Kind{
	SimpleProperty:         criteria.Equal,
	NegatingSimpleProperty: criteria.NotEqual,
	After:                  criteria.GreaterThan,
	Before:                 criteria.LessThan,
	Between:                criteria.Between,
	LessThan:               criteria.LessThan,
	LessThanEqual:          criteria.LessThanOrEqual,
	GreaterThan:            criteria.GreaterThan,
	GreaterThanEqual:       criteria.GreaterThanOrEqual,
	IsEmpty:                criteria.IsEmpty,
	IsNotEmpty:             criteria.IsNotEmpty,
	IsNull:                 criteria.IsNull,
	IsNotNull:              criteria.IsNotNull,
	Within:                 criteria.Within,
	Containing:             criteria.Containing,
	StartingWith:           criteria.StartingWith,
	EndingWith:             criteria.EndingWith,
	In:                     criteria.In,
	NotIn:                  criteria.NotIn,
	Exists:                 criteria.Exists,
	Like:                   criteria.Like,
	NotLike:                criteria.NotLike,
	Near:                   criteria.Near,
	Regex:                  criteria.Regex,
}

// KindOf returns the operator a part type classifies to.
// TRUE and FALSE classify to EQUAL.
func KindOf(t PartType) (criteria.Kind, error) {
	switch t {
	case True, False:
		return criteria.Equal, nil
	}
	if kind, ok := criteriaLookup[t]; ok {
		return kind, nil
	}
	return criteria.KindInvalid, criteria.NewUnsupportedOperator(t.String())
}

// Creator folds classified parts into criteria trees.
// It holds no per-query state and may be shared.
type Creator struct {
	log *zap.Logger
}

// Option configures a Creator.
type Option func(*Creator)

// WithLogger sets the logger used for debug tracing of tree construction.
func WithLogger(log *zap.Logger) Option {
	return func(c *Creator) {
		if log != nil {
			c.log = log
		}
	}
}

// NewCreator creates a Creator. Without options it logs nothing.
func NewCreator(opts ...Option) *Creator {
	c := &Creator{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create builds the leaf for a single part, draining its arguments from args.
func (c *Creator) Create(part Part, args Arguments) (criteria.Node, error) {
	c.log.Debug("creating criteria from part", zap.Stringer("part", part))
	return c.createLeaf(part, args)
}

// And appends part to base with AND.
func (c *Creator) And(base criteria.Node, part Part, args Arguments) (criteria.Node, error) {
	c.log.Debug("combining criteria with AND", zap.Stringer("part", part))

	leaf, err := c.createLeaf(part, args)
	if err != nil {
		return nil, err
	}
	return criteria.And(base, leaf), nil
}

// Or joins two trees with OR.
func (c *Creator) Or(base, other criteria.Node) criteria.Node {
	c.log.Debug("combining criteria with OR")
	return criteria.Or(base, other)
}

// Complete pairs the finished tree with the method's sort specification.
func (c *Creator) Complete(root criteria.Node, sort criteria.Sort) *criteria.Query {
	return criteria.NewQuery(root, sort)
}

// CreateQuery folds a whole part tree the way a method name reads: parts in a
// group are AND-ed left to right, groups are OR-ed left to right.
//
//	findByAAndBOrC(a, b, c) → Or(And(A, B), C)
//
// An empty tree yields a query with nil criteria.
func (c *Creator) CreateQuery(tree PartTree, args Arguments, sort criteria.Sort) (*criteria.Query, error) {
	var base criteria.Node

	for i, group := range tree {
		if len(group) == 0 {
			return nil, fmt.Errorf("or-group %d has no parts", i)
		}

		node, err := c.Create(group[0], args)
		if err != nil {
			return nil, err
		}
		for _, part := range group[1:] {
			node, err = c.And(node, part, args)
			if err != nil {
				return nil, err
			}
		}

		if base == nil {
			base = node
		} else {
			base = c.Or(base, node)
		}
	}

	return c.Complete(base, sort), nil
}

// createLeaf classifies part and binds its arguments.
func (c *Creator) createLeaf(part Part, args Arguments) (*criteria.Leaf, error) {
	ignoreCase := part.shouldIgnoreCase()

	switch part.Type {
	case True:
		return criteria.Value(part.Property, criteria.Equal, []any{true}, ignoreCase), nil
	case False:
		return criteria.Value(part.Property, criteria.Equal, []any{false}, ignoreCase), nil
	}

	kind, err := KindOf(part.Type)
	if err != nil {
		return nil, err
	}

	n := part.NumberOfArguments()
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, ok := args.Next()
		if !ok {
			return nil, criteria.NewArityMismatch(part.Type.String(), n, i)
		}
		values = append(values, v)
	}

	return criteria.Value(part.Property, kind, values, ignoreCase), nil
}

// Validate checks that every part in tree classifies, without consuming
// arguments. Use it to reject a method definition before its first call.
func Validate(tree PartTree) error {
	for i, group := range tree {
		if len(group) == 0 {
			return fmt.Errorf("or-group %d has no parts", i)
		}
		for _, part := range group {
			if _, err := KindOf(part.Type); err != nil {
				return fmt.Errorf("part %q: %w", part.Property, err)
			}
		}
	}
	return nil
}

// NumberOfArguments is the total argument count tree consumes.
func NumberOfArguments(tree PartTree) int {
	n := 0
	for _, part := range tree.Parts() {
		n += part.NumberOfArguments()
	}
	return n
}
