package derive

// Arguments supplies method arguments to parts in call order.
type Arguments interface {
	// Next returns the next unconsumed argument, or false when exhausted.
	Next() (any, bool)
}

// SliceArguments iterates a fixed argument list.
type SliceArguments struct {
	values []any
	pos    int
}

// NewArguments creates an Arguments over values.
func NewArguments(values ...any) *SliceArguments {
	return &SliceArguments{values: values}
}

// Next implements Arguments.
func (a *SliceArguments) Next() (any, bool) {
	if a.pos >= len(a.values) {
		return nil, false
	}
	v := a.values[a.pos]
	a.pos++
	return v, true
}

// Remaining is the number of arguments not yet consumed.
func (a *SliceArguments) Remaining() int {
	return len(a.values) - a.pos
}
