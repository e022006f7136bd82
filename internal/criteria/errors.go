package criteria

import (
	"errors"
	"fmt"
)

// Error reports a defect in a query definition detected while classifying
// fragments or compiling a tree.
//
// These errors are local and non-retryable. Callers surface them as
// query-definition errors: at repository construction for derived queries,
// at call time for programmatic criteria.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Operator names the offending operator: a criteria Kind name, or a
	// fragment type name when classification failed.
	Operator string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes criteria errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedOperator indicates a fragment type or leaf kind with no mapping.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeInvalidOperandShape indicates an IN/NOT_IN value that is not a sequence.
	ErrCodeInvalidOperandShape ErrorCode = "INVALID_OPERAND_SHAPE"

	// ErrCodeArityMismatch indicates placeholder and value counts differ.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("%s: %s (operator=%s)", e.Code, e.Message, e.Operator)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewUnsupportedOperator creates an Error for an operator with no mapping.
func NewUnsupportedOperator(operator string) *Error {
	return &Error{
		Code:     ErrCodeUnsupportedOperator,
		Operator: operator,
		Message:  "unsupported operator",
	}
}

// NewInvalidOperandShape creates an Error for a non-sequence IN/NOT_IN operand.
func NewInvalidOperandShape(kind Kind, value any) *Error {
	return &Error{
		Code:     ErrCodeInvalidOperandShape,
		Operator: kind.String(),
		Message:  fmt.Sprintf("value provided for %s is not a list value (got %T)", kind, value),
	}
}

// NewArityMismatch creates an Error for a wrong number of values.
func NewArityMismatch(operator string, want, got int) *Error {
	return &Error{
		Code:     ErrCodeArityMismatch,
		Operator: operator,
		Message:  fmt.Sprintf("incorrect number of values: expected %d, got %d", want, got),
	}
}

// NewCallArityMismatch creates an Error for a method called with the wrong
// number of arguments. No single operator is at fault, so Operator is empty.
func NewCallArityMismatch(method string, want, got int) *Error {
	return &Error{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf("method %s takes %d argument(s), got %d", method, want, got),
	}
}

// ErrorCodeOf extracts the code from err, or "" when err is not an *Error.
// Uses errors.As to handle wrapped errors.
func ErrorCodeOf(err error) ErrorCode {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsUnsupportedOperator returns true if err is an unsupported-operator error.
func IsUnsupportedOperator(err error) bool {
	return ErrorCodeOf(err) == ErrCodeUnsupportedOperator
}

// IsInvalidOperandShape returns true if err is an invalid-operand-shape error.
func IsInvalidOperandShape(err error) bool {
	return ErrorCodeOf(err) == ErrCodeInvalidOperandShape
}

// IsArityMismatch returns true if err is an arity-mismatch error.
func IsArityMismatch(err error) bool {
	return ErrorCodeOf(err) == ErrCodeArityMismatch
}
