package criteria

import (
	"fmt"
	"strings"
)

// Direction is the ordering of one sort key.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts "asc"/"desc" in any case. Empty means ascending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q", s)
	}
}

// Order is a single sort key.
type Order struct {
	Property  string    `json:"property" yaml:"property"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Sort is an ordered list of sort keys.
// It is carried alongside the criteria and never rendered by the compiler.
type Sort []Order

// Unsorted reports whether s has no keys.
func (s Sort) Unsorted() bool { return len(s) == 0 }

// Query pairs a criteria tree with its sort specification.
// Criteria may be nil, meaning "match everything".
type Query struct {
	Criteria Node
	Sort     Sort
}

// NewQuery creates a query over root with the given sort keys.
func NewQuery(root Node, sort Sort) *Query {
	return &Query{Criteria: root, Sort: sort}
}
