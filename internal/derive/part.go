package derive

import (
	"fmt"

	"github.com/roach88/docquery/internal/schema"
)

// PartType is the keyword class of one method-name fragment
// (e.g. "ByMessageContaining" → CONTAINING).
type PartType int

const (
	PartInvalid PartType = iota
	SimpleProperty
	NegatingSimpleProperty
	After
	Before
	Between
	LessThan
	LessThanEqual
	GreaterThan
	GreaterThanEqual
	IsEmpty
	IsNotEmpty
	IsNull
	IsNotNull
	Within
	Containing
	NotContaining
	StartingWith
	EndingWith
	In
	NotIn
	Exists
	Like
	NotLike
	Near
	Regex
	True
	False
)

type partTypeInfo struct {
	name string
	args int
}

var partTypes = map[PartType]partTypeInfo{
	SimpleProperty:         {"SIMPLE_PROPERTY", 1},
	NegatingSimpleProperty: {"NEGATING_SIMPLE_PROPERTY", 1},
	After:                  {"AFTER", 1},
	Before:                 {"BEFORE", 1},
	Between:                {"BETWEEN", 2},
	LessThan:               {"LESS_THAN", 1},
	LessThanEqual:          {"LESS_THAN_EQUAL", 1},
	GreaterThan:            {"GREATER_THAN", 1},
	GreaterThanEqual:       {"GREATER_THAN_EQUAL", 1},
	IsEmpty:                {"IS_EMPTY", 0},
	IsNotEmpty:             {"IS_NOT_EMPTY", 0},
	IsNull:                 {"IS_NULL", 0},
	IsNotNull:              {"IS_NOT_NULL", 0},
	Within:                 {"WITHIN", 1},
	Containing:             {"CONTAINING", 1},
	NotContaining:          {"NOT_CONTAINING", 1},
	StartingWith:           {"STARTING_WITH", 1},
	EndingWith:             {"ENDING_WITH", 1},
	In:                     {"IN", 1},
	NotIn:                  {"NOT_IN", 1},
	Exists:                 {"EXISTS", 0},
	Like:                   {"LIKE", 1},
	NotLike:                {"NOT_LIKE", 1},
	Near:                   {"NEAR", 1},
	Regex:                  {"REGEX", 1},
	True:                   {"TRUE", 0},
	False:                  {"FALSE", 0},
}

var partTypesByName = func() map[string]PartType {
	m := make(map[string]PartType, len(partTypes))
	for t, info := range partTypes {
		m[info.name] = t
	}
	return m
}()

// String returns the canonical name (e.g. "GREATER_THAN_EQUAL").
func (t PartType) String() string {
	if info, ok := partTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("PartType(%d)", int(t))
}

// NumberOfArguments is how many method arguments the fragment consumes.
func (t PartType) NumberOfArguments() int {
	return partTypes[t].args
}

// ParsePartType maps a canonical name back to its PartType.
func ParsePartType(name string) (PartType, error) {
	if t, ok := partTypesByName[name]; ok {
		return t, nil
	}
	return PartInvalid, fmt.Errorf("unknown part type %q", name)
}

// IgnoreCaseType is the case-folding policy declared on a fragment.
type IgnoreCaseType int

const (
	Never IgnoreCaseType = iota
	WhenPossible
	Always
)

// String returns the canonical name.
func (i IgnoreCaseType) String() string {
	switch i {
	case Never:
		return "NEVER"
	case WhenPossible:
		return "WHEN_POSSIBLE"
	case Always:
		return "ALWAYS"
	default:
		return fmt.Sprintf("IgnoreCaseType(%d)", int(i))
	}
}

// ParseIgnoreCase maps a canonical name to its policy. Empty means NEVER.
func ParseIgnoreCase(name string) (IgnoreCaseType, error) {
	switch name {
	case "", "NEVER":
		return Never, nil
	case "WHEN_POSSIBLE":
		return WhenPossible, nil
	case "ALWAYS":
		return Always, nil
	default:
		return Never, fmt.Errorf("unknown ignore-case policy %q", name)
	}
}

// Part is one classified predicate fragment of a derived query.
//
// Property is already resolved from the entity's property graph to its
// dotted path; PropertyType is that property's declared type.
type Part struct {
	Property     string
	Type         PartType
	IgnoreCase   IgnoreCaseType
	PropertyType schema.FieldType
}

// NumberOfArguments is how many method arguments this part consumes.
func (p Part) NumberOfArguments() int {
	return p.Type.NumberOfArguments()
}

// shouldIgnoreCase resolves the case-folding policy against the property type.
func (p Part) shouldIgnoreCase() bool {
	switch p.IgnoreCase {
	case Always:
		return true
	case WhenPossible:
		return p.PropertyType.Textual()
	default:
		return false
	}
}

func (p Part) String() string {
	return fmt.Sprintf("%s %s", p.Property, p.Type)
}

// OrPart is a group of parts joined by AND.
type OrPart []Part

// PartTree is a derived query: OR-ed groups of AND-ed parts, in method-name order.
type PartTree []OrPart

// Parts returns every part in order.
func (t PartTree) Parts() []Part {
	var parts []Part
	for _, group := range t {
		parts = append(parts, group...)
	}
	return parts
}
