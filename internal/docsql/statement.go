package docsql

import (
	"fmt"
	"strings"

	"github.com/roach88/docquery/internal/criteria"
)

// DefaultAlias is the document alias used by SELECT statements.
const DefaultAlias = "r"

// Param is one named parameter binding.
type Param struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Params is an ordered parameter list.
type Params []Param

// Map returns the bindings keyed by parameter name.
func (ps Params) Map() map[string]any {
	m := make(map[string]any, len(ps))
	for _, p := range ps {
		m[p.Name] = p.Value
	}
	return m
}

// Statement is a complete query ready for a store client.
//
// Text is sent verbatim; Params are its named bindings in numbering order.
// Criteria is the WHERE body alone, qualified with Alias. Sort is carried
// through untouched for the client to apply.
type Statement struct {
	Text     string        `json:"text"`
	Alias    string        `json:"alias"`
	Criteria string        `json:"criteria,omitempty"`
	Params   Params        `json:"params"`
	Sort     criteria.Sort `json:"sort,omitempty"`
}

// Bindings returns the parameter map {"@p1": v1, ...}.
func (s *Statement) Bindings() map[string]any {
	return s.Params.Map()
}

// String renders the statement and its bindings for diagnostics.
func (s *Statement) String() string {
	var b strings.Builder
	b.WriteString(s.Text)
	for _, p := range s.Params {
		fmt.Fprintf(&b, "\n  %s = %#v", p.Name, p.Value)
	}
	return b.String()
}

// Statement compiles q into a full SELECT over the container root.
//
// Example:
//
//	SELECT * FROM ROOT r WHERE r.message=@p1 AND r.id<@p2
//
// A nil criteria selects every document. Field references are qualified with
// the compiler alias, or DefaultAlias when none was configured.
func (c *Compiler) Statement(q *criteria.Query, idField string) (*Statement, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot compile nil query")
	}

	alias := c.alias
	if alias == "" {
		alias = DefaultAlias
	}

	stmt := &Statement{
		Text:   "SELECT * FROM ROOT " + alias,
		Alias:  alias,
		Params: Params{},
		Sort:   q.Sort,
	}
	if q.Criteria == nil {
		return stmt, nil
	}

	aliased := &Compiler{alias: alias}
	where, params, err := aliased.CompileParams(q.Criteria, idField)
	if err != nil {
		return nil, fmt.Errorf("compile criteria: %w", err)
	}

	stmt.Criteria = where
	stmt.Params = params
	stmt.Text += " WHERE " + where
	return stmt, nil
}
