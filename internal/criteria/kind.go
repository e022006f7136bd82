package criteria

import "fmt"

// Kind identifies the operator carried by a criteria node.
// AND and OR are only valid on Composite nodes; every other kind is a leaf kind.
type Kind int

const (
	KindInvalid Kind = iota
	AndCondition
	OrCondition
	Equal
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Between
	Within
	Containing
	EndingWith
	StartingWith
	Exists
	IsEmpty
	IsNotEmpty
	IsNull
	IsNotNull
	Like
	NotLike
	In
	NotIn
	Near
	Regex
)

var kindNames = map[Kind]string{
	AndCondition:       "AND",
	OrCondition:        "OR",
	Equal:              "EQUAL",
	NotEqual:           "NOT_EQUAL",
	LessThan:           "LESS_THAN",
	LessThanOrEqual:    "LESS_THAN_OR_EQUAL",
	GreaterThan:        "GREATER_THAN",
	GreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	Between:            "BETWEEN",
	Within:             "WITHIN",
	Containing:         "CONTAINING",
	EndingWith:         "ENDING_WITH",
	StartingWith:       "STARTING_WITH",
	Exists:             "EXISTS",
	IsEmpty:            "IS_EMPTY",
	IsNotEmpty:         "IS_NOT_EMPTY",
	IsNull:             "IS_NULL",
	IsNotNull:          "IS_NOT_NULL",
	Like:               "LIKE",
	NotLike:            "NOT_LIKE",
	In:                 "IN",
	NotIn:              "NOT_IN",
	Near:               "NEAR",
	Regex:              "REGEX",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the canonical upper-case name (e.g. "GREATER_THAN").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsComposite reports whether k combines two sub-trees (AND, OR).
func (k Kind) IsComposite() bool {
	return k == AndCondition || k == OrCondition
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a canonical name back to its Kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindsByName[name]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown criteria kind %q", name)
}
