package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/repository"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Method   string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s on %s\n", e.Type, e.Method)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(repo *repository.Repository, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(repo, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(repo *repository.Repository, a Assertion) error {
	switch a.Type {
	case AssertConstrains:
		return assertConstrains(repo, a)
	case AssertArguments:
		return assertArguments(repo, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertConstrains checks whether a method's criteria tests a field.
func assertConstrains(repo *repository.Repository, a Assertion) error {
	got, err := repo.Constrains(a.Method, a.Field)
	if err != nil {
		return &AssertionError{Type: a.Type, Method: a.Method, Expected: fmt.Sprintf("constrains(%s) = %t", a.Field, a.Want), Actual: err.Error()}
	}
	if got != a.Want {
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: fmt.Sprintf("constrains(%s) = %t", a.Field, a.Want),
			Actual:   fmt.Sprintf("constrains(%s) = %t", a.Field, got),
		}
	}
	if a.Kind != "" {
		return assertOperator(repo, a)
	}
	return nil
}

// assertOperator checks that field is tested with the named operator.
func assertOperator(repo *repository.Repository, a Assertion) error {
	expected := fmt.Sprintf("constrains(%s) with %s", a.Field, a.Kind)

	want, err := criteria.ParseKind(a.Kind)
	if err != nil {
		return &AssertionError{Type: a.Type, Method: a.Method, Expected: expected, Actual: err.Error()}
	}
	kinds, err := repo.Operators(a.Method, a.Field)
	if err != nil {
		return &AssertionError{Type: a.Type, Method: a.Method, Expected: expected, Actual: err.Error()}
	}
	if !slices.Contains(kinds, want) {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: expected,
			Actual:   fmt.Sprintf("operators [%s]", strings.Join(names, ", ")),
		}
	}
	return nil
}

// assertArguments checks how many arguments a method consumes.
func assertArguments(repo *repository.Repository, a Assertion) error {
	got, err := repo.NumberOfArguments(a.Method)
	if err != nil {
		return &AssertionError{Type: a.Type, Method: a.Method, Expected: fmt.Sprintf("%d arguments", a.Count), Actual: err.Error()}
	}
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Method:   a.Method,
			Expected: fmt.Sprintf("%d arguments", a.Count),
			Actual:   fmt.Sprintf("%d arguments", got),
		}
	}
	return nil
}
