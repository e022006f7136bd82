package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docquery/internal/schema"
)

func TestPartType_NumberOfArguments(t *testing.T) {
	tests := map[PartType]int{
		Between:        2,
		IsNull:         0,
		IsNotNull:      0,
		IsEmpty:        0,
		IsNotEmpty:     0,
		Exists:         0,
		True:           0,
		False:          0,
		SimpleProperty: 1,
		In:             1,
		Near:           1,
		NotContaining:  1,
	}

	for pt, want := range tests {
		assert.Equal(t, want, pt.NumberOfArguments(), pt.String())
	}
}

func TestParsePartType_RoundTrip(t *testing.T) {
	for pt := range partTypes {
		got, err := ParsePartType(pt.String())
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}

	_, err := ParsePartType("SOUNDS_LIKE")
	assert.Error(t, err)
}

func TestPartType_StringUnknown(t *testing.T) {
	assert.Equal(t, "PartType(99)", PartType(99).String())
	assert.Equal(t, "PartType(0)", PartInvalid.String())
}

func TestParseIgnoreCase(t *testing.T) {
	tests := []struct {
		in      string
		want    IgnoreCaseType
		wantErr bool
	}{
		{"", Never, false},
		{"NEVER", Never, false},
		{"WHEN_POSSIBLE", WhenPossible, false},
		{"ALWAYS", Always, false},
		{"always", Never, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIgnoreCase(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.Equal(t, tt.in, got.String())
			}
		})
	}
}

func TestPartTree_Parts(t *testing.T) {
	a := Part{Property: "a", Type: SimpleProperty}
	b := Part{Property: "b", Type: IsNull}
	c := Part{Property: "c", Type: Between, PropertyType: schema.TypeInt}

	tree := PartTree{{a, b}, {c}}
	assert.Equal(t, []Part{a, b, c}, tree.Parts())
	assert.Empty(t, PartTree{}.Parts())
}

func TestPart_String(t *testing.T) {
	p := Part{Property: "message", Type: StartingWith}
	assert.Equal(t, "message STARTING_WITH", p.String())
}

func TestSliceArguments(t *testing.T) {
	args := NewArguments(1, nil)
	assert.Equal(t, 2, args.Remaining())

	v, ok := args.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = args.Next()
	assert.True(t, ok, "nil is a valid argument")
	assert.Nil(t, v)

	_, ok = args.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, args.Remaining())
}
