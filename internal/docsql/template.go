package docsql

import (
	"strings"

	"github.com/roach88/docquery/internal/criteria"
)

// Template markers. "$f" stands for the field reference, "$v" for one value
// placeholder. They never reach the output: templates are tokenized once at
// init and rendered token by token.
const (
	fieldMarker = "$f"
	valueMarker = "$v"
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokField
	tokValue
)

type token struct {
	kind tokenKind
	text string // literal text; empty for field/value tokens
}

// template is a tokenized operator pattern.
type template []token

// placeholders counts value tokens.
func (t template) placeholders() int {
	n := 0
	for _, tok := range t {
		if tok.kind == tokValue {
			n++
		}
	}
	return n
}

// operatorTemplates is the fixed kind → pattern table.
// LIKE, NOT_LIKE, NEAR and REGEX have no rendering in the dialect.
var operatorTemplates = map[criteria.Kind]template{
	criteria.Equal:              mustParseTemplate("$f=$v"),
	criteria.NotEqual:           mustParseTemplate("$f!=$v"),
	criteria.LessThan:           mustParseTemplate("$f<$v"),
	criteria.LessThanOrEqual:    mustParseTemplate("$f<=$v"),
	criteria.GreaterThan:        mustParseTemplate("$f>$v"),
	criteria.GreaterThanOrEqual: mustParseTemplate("$f>=$v"),
	criteria.Between:            mustParseTemplate("$f BETWEEN $v AND $v"),
	criteria.Exists:             mustParseTemplate("IS_DEFINED($f)"),
	criteria.IsEmpty:            mustParseTemplate("LENGTH($f)=0"),
	criteria.IsNotEmpty:         mustParseTemplate("LENGTH($f)!=0"),
	criteria.IsNull:             mustParseTemplate("IS_NULL($f)"),
	criteria.IsNotNull:          mustParseTemplate("NOT (IS_NULL($f))"),
	criteria.StartingWith:       mustParseTemplate("STARTSWITH($f,$v)"),
	criteria.EndingWith:         mustParseTemplate("ENDSWITH($f,$v)"),
	criteria.Containing:         mustParseTemplate("CONTAINS($f,$v)"),
	criteria.Within:             mustParseTemplate("CONTAINS($v,$f)"),
}

// Supports reports whether a leaf of kind has a rendering in the dialect.
func Supports(kind criteria.Kind) bool {
	if kind == criteria.In || kind == criteria.NotIn {
		return true
	}
	_, ok := operatorTemplates[kind]
	return ok
}

// membershipTemplate builds "$f IN ($v,...,$v)" with n placeholders,
// wrapped in NOT (...) when negate is set.
func membershipTemplate(n int, negate bool) template {
	var b strings.Builder
	if negate {
		b.WriteString("NOT (")
	}
	b.WriteString("$f IN (")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(valueMarker)
	}
	b.WriteByte(')')
	if negate {
		b.WriteByte(')')
	}
	return mustParseTemplate(b.String())
}

// mustParseTemplate tokenizes a pattern. Patterns are package constants, so
// a malformed one is a programming error.
func mustParseTemplate(pattern string) template {
	var (
		out template
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); {
		switch {
		case strings.HasPrefix(pattern[i:], fieldMarker):
			flush()
			out = append(out, token{kind: tokField})
			i += len(fieldMarker)
		case strings.HasPrefix(pattern[i:], valueMarker):
			flush()
			out = append(out, token{kind: tokValue})
			i += len(valueMarker)
		case pattern[i] == '$':
			panic("docsql: unknown marker in template " + pattern)
		default:
			lit.WriteByte(pattern[i])
			i++
		}
	}
	flush()
	return out
}
