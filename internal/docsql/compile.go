package docsql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/docquery/internal/criteria"
)

// IDProperty is the physical key every document is stored under.
const IDProperty = "id"

// Compiler renders criteria trees into the document SQL dialect.
//
// A Compiler holds configuration only. All state of a compilation (the
// parameter counter and bindings) lives in a per-call compileState, so one
// Compiler may be shared across goroutines.
//
// CRITICAL: Values are NEVER interpolated - every value becomes an @pN parameter.
type Compiler struct {
	alias string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithAlias prefixes every field reference with alias (e.g. "r" → r.message).
// The default compiler renders bare field names.
func WithAlias(alias string) Option {
	return func(c *Compiler) {
		c.alias = alias
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders root into a criteria string and its parameter bindings.
//
// idField is the entity's logical id property; leaves on that field are
// rendered against the physical "id" key. Parameters are named @p1, @p2, ...
// in the order their leaves are rendered (left operand before right).
//
// Compiling the same tree twice yields byte-identical output.
func (c *Compiler) Compile(root criteria.Node, idField string) (string, map[string]any, error) {
	text, params, err := c.CompileParams(root, idField)
	if err != nil {
		return "", nil, err
	}
	return text, Params(params).Map(), nil
}

// CompileParams is Compile with bindings returned in numbering order.
func (c *Compiler) CompileParams(root criteria.Node, idField string) (string, []Param, error) {
	st := &compileState{
		alias:   c.alias,
		idField: idField,
		params:  []Param{},
	}
	text, err := st.render(root)
	if err != nil {
		return "", nil, err
	}
	return text, st.params, nil
}

// compileState carries one compilation's parameter counter and bindings.
type compileState struct {
	alias   string
	idField string
	params  []Param
}

// render compiles one node recursively.
func (st *compileState) render(n criteria.Node) (string, error) {
	switch node := n.(type) {
	case *criteria.Composite:
		return st.renderComposite(node)
	case *criteria.Leaf:
		return st.renderLeaf(node)
	case nil:
		return "", fmt.Errorf("cannot compile nil criteria")
	default:
		return "", fmt.Errorf("unsupported criteria node: %T", n)
	}
}

// renderComposite joins both operands, left first so its parameters are
// numbered before the right operand's.
func (st *compileState) renderComposite(c *criteria.Composite) (string, error) {
	left, err := st.render(c.Left())
	if err != nil {
		return "", err
	}
	right, err := st.render(c.Right())
	if err != nil {
		return "", err
	}

	switch c.Kind() {
	case criteria.AndCondition:
		return left + " AND " + right, nil
	case criteria.OrCondition:
		return "(" + left + ") OR (" + right + ")", nil
	default:
		return "", criteria.NewUnsupportedOperator(c.Kind().String())
	}
}

// renderLeaf selects the template for a leaf and finishes it.
func (st *compileState) renderLeaf(l *criteria.Leaf) (string, error) {
	switch l.Kind() {
	case criteria.In, criteria.NotIn:
		items, err := membershipItems(l)
		if err != nil {
			return "", err
		}
		tmpl := membershipTemplate(len(items), l.Kind() == criteria.NotIn)
		return st.finish(tmpl, l, items)
	}

	tmpl, ok := operatorTemplates[l.Kind()]
	if !ok {
		return "", criteria.NewUnsupportedOperator(l.Kind().String())
	}
	return st.finish(tmpl, l, l.Values())
}

// finish renders tmpl for leaf l, binding values to placeholders in order.
//
// Case folding wraps the field reference and every placeholder in LOWER(...).
// It applies to the id field as well.
func (st *compileState) finish(tmpl template, l *criteria.Leaf, values []any) (string, error) {
	if want := tmpl.placeholders(); want != len(values) {
		return "", criteria.NewArityMismatch(l.Kind().String(), want, len(values))
	}

	field := st.fieldRef(l.Field())

	var b strings.Builder
	next := 0
	for _, tok := range tmpl {
		switch tok.kind {
		case tokLiteral:
			b.WriteString(tok.text)
		case tokField:
			writeFolded(&b, field, l.IgnoreCase())
		case tokValue:
			writeFolded(&b, st.bind(values[next]), l.IgnoreCase())
			next++
		}
	}
	return b.String(), nil
}

// fieldRef maps a logical field to the rendered reference.
func (st *compileState) fieldRef(field string) string {
	name := field
	if field == st.idField {
		name = IDProperty
	}
	if st.alias == "" {
		return name
	}
	return st.alias + "." + name
}

// bind allocates the next global parameter name for v.
func (st *compileState) bind(v any) string {
	name := "@p" + strconv.Itoa(len(st.params)+1)
	st.params = append(st.params, Param{Name: name, Value: v})
	return name
}

func writeFolded(b *strings.Builder, s string, fold bool) {
	if !fold {
		b.WriteString(s)
		return
	}
	b.WriteString("LOWER(")
	b.WriteString(s)
	b.WriteByte(')')
}

// membershipItems unpacks the single sequence operand of an IN/NOT_IN leaf.
// Strings and byte slices are scalars, not sequences.
func membershipItems(l *criteria.Leaf) ([]any, error) {
	values := l.Values()
	if len(values) != 1 {
		return nil, &criteria.Error{
			Code:     criteria.ErrCodeInvalidOperandShape,
			Operator: l.Kind().String(),
			Message:  fmt.Sprintf("expected a single list value, got %d values", len(values)),
		}
	}

	v := values[0]
	if v == nil {
		return nil, criteria.NewInvalidOperandShape(l.Kind(), v)
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, criteria.NewInvalidOperandShape(l.Kind(), v)
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	default:
		return nil, criteria.NewInvalidOperandShape(l.Kind(), v)
	}
}
