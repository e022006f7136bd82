package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docquery/internal/repository"
	"github.com/roach88/docquery/internal/schema"
)

func testRepository(t *testing.T) *repository.Repository {
	t.Helper()
	loaded, errs := schema.LoadDir(specsDir, schema.LoadModeFailFast)
	require.Empty(t, errs)
	entity, ok := loaded.Entity("QueryTest")
	require.True(t, ok)

	repo, err := repository.New(entity, nil)
	require.NoError(t, err)
	return repo
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	repo := testRepository(t)

	failures := EvaluateAssertions(repo, []Assertion{
		{Type: AssertConstrains, Method: "findByActiveTrueAndTagsContaining", Field: "active", Want: true},
		{Type: AssertConstrains, Method: "findByActiveTrueAndTagsContaining", Field: "message", Want: false},
		{Type: AssertArguments, Method: "findByActiveTrueAndTagsContaining", Count: 1},
		{Type: AssertArguments, Method: "findByDateNotIn", Count: 1},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	repo := testRepository(t)

	failures := EvaluateAssertions(repo, []Assertion{
		{Type: AssertConstrains, Method: "findByIdIn", Field: "id", Want: false},
		{Type: AssertArguments, Method: "findByIdIn", Count: 2},
		{Type: AssertArguments, Method: "findByNothing", Count: 0},
		{Type: AssertConstrains, Method: "findByNothing", Field: "id"},
		{Type: "trace_order", Method: "findByIdIn"},
	})
	require.Len(t, failures, 5)

	assert.Contains(t, failures[0], "Assertion failed: constrains on findByIdIn")
	assert.Contains(t, failures[0], "Expected: constrains(id) = false")
	assert.Contains(t, failures[0], "Actual: constrains(id) = true")
	assert.Contains(t, failures[1], "Expected: 2 arguments")
	assert.Contains(t, failures[1], "Actual: 1 arguments")
	assert.Contains(t, failures[2], "unknown method")
	assert.Contains(t, failures[3], "unknown method")
	assert.Contains(t, failures[4], "unknown assertion type: trace_order")
}

func TestEvaluateAssertions_Operator(t *testing.T) {
	repo := testRepository(t)

	failures := EvaluateAssertions(repo, []Assertion{
		{Type: AssertConstrains, Method: "findByActiveTrueAndTagsContaining", Field: "tags", Want: true, Kind: "CONTAINING"},
		{Type: AssertConstrains, Method: "findByActiveTrueAndTagsContaining", Field: "active", Want: true, Kind: "EQUAL"},
		{Type: AssertConstrains, Method: "findByActiveTrueAndTagsContaining", Field: "tags", Want: true, Kind: "IN"},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "Expected: constrains(tags) with IN")
	assert.Contains(t, failures[0], "Actual: operators [CONTAINING]")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertArguments,
		Method:   "findByIdIn",
		Expected: "2 arguments",
		Actual:   "1 arguments",
	}

	assert.Equal(t,
		"Assertion failed: arguments on findByIdIn\n  Expected: 2 arguments\n  Actual: 1 arguments",
		err.Error())
}
