package criteria

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Construction(t *testing.T) {
	leaf := Value("message", Containing, []any{"hello"}, true)

	assert.Equal(t, "message", leaf.Field())
	assert.Equal(t, Containing, leaf.Kind())
	assert.Equal(t, []any{"hello"}, leaf.Values())
	assert.True(t, leaf.IgnoreCase())
	assert.Equal(t, 1, leaf.NumValues())
}

func TestValue_CopiesValues(t *testing.T) {
	values := []any{"a", "b"}
	leaf := Value("id", Between, values, false)

	// Mutating the caller's slice must not leak into the tree
	values[0] = "z"
	assert.Equal(t, []any{"a", "b"}, leaf.Values())

	// Nor may mutating the returned copy
	got := leaf.Values()
	got[1] = "y"
	assert.Equal(t, []any{"a", "b"}, leaf.Values())
}

func TestValue_NilValues(t *testing.T) {
	leaf := Value("testValue", IsNull, nil, false)

	assert.Equal(t, 0, leaf.NumValues())
	assert.Empty(t, leaf.Values())
}

func TestComposite_Construction(t *testing.T) {
	left := Value("a", Equal, []any{1}, false)
	right := Value("b", Equal, []any{2}, false)

	and := And(left, right)
	assert.Equal(t, AndCondition, and.Kind())
	assert.Same(t, left, and.Left())
	assert.Same(t, right, and.Right())

	or := Or(left, right)
	assert.Equal(t, OrCondition, or.Kind())
}

func TestNode_SealedSwitch(t *testing.T) {
	nodes := []Node{
		Value("a", Equal, []any{1}, false),
		And(Value("a", Equal, []any{1}, false), Value("b", Equal, []any{2}, false)),
	}

	for _, n := range nodes {
		switch n.(type) {
		case *Leaf, *Composite:
			// Expected
		default:
			t.Fatalf("unexpected node type %T", n)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{AndCondition, "AND"},
		{OrCondition, "OR"},
		{Equal, "EQUAL"},
		{GreaterThanOrEqual, "GREATER_THAN_OR_EQUAL"},
		{NotIn, "NOT_IN"},
		{Regex, "REGEX"},
		{Kind(999), "Kind(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseKind_RoundTrip(t *testing.T) {
	for k := AndCondition; k <= Regex; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err, "kind %d", k)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("SOUNDS_LIKE")
	assert.Error(t, err)
}

func TestKind_IsComposite(t *testing.T) {
	assert.True(t, AndCondition.IsComposite())
	assert.True(t, OrCondition.IsComposite())
	assert.False(t, Equal.IsComposite())
	assert.False(t, KindInvalid.IsComposite())
	assert.False(t, KindInvalid.Valid())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	d, err = ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestErrors_Helpers(t *testing.T) {
	unsupported := NewUnsupportedOperator("NEAR")
	shape := NewInvalidOperandShape(In, "scalar")
	arity := NewArityMismatch("EQUAL", 1, 2)

	assert.True(t, IsUnsupportedOperator(unsupported))
	assert.True(t, IsInvalidOperandShape(shape))
	assert.True(t, IsArityMismatch(arity))

	// Wrapped errors are still recognised
	wrapped := fmt.Errorf("compile leaf: %w", arity)
	assert.True(t, IsArityMismatch(wrapped))
	assert.False(t, IsUnsupportedOperator(wrapped))
	assert.Equal(t, ErrCodeArityMismatch, ErrorCodeOf(wrapped))

	assert.Equal(t, ErrorCode(""), ErrorCodeOf(fmt.Errorf("plain")))
	assert.Contains(t, unsupported.Error(), "UNSUPPORTED_OPERATOR")
	assert.Contains(t, unsupported.Error(), "operator=NEAR")
	assert.Contains(t, shape.Error(), "not a list value")
	assert.Contains(t, arity.Error(), "expected 1, got 2")

	call := NewCallArityMismatch("findByIdIn", 1, 0)
	assert.True(t, IsArityMismatch(call))
	assert.Empty(t, call.Operator)
	assert.Equal(t, "ARITY_MISMATCH: method findByIdIn takes 1 argument(s), got 0", call.Error())
}
