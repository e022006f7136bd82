package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	for _, name := range []string{"derived_queries", "definition_errors"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadFixture(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_KeepsOperatorsReadable(t *testing.T) {
	s := Snapshot{
		Scenario: "ops",
		Steps: []StepResult{
			{Call: "findByDateLessThan", SQL: "SELECT * FROM ROOT r WHERE r.date<@p1"},
		},
	}

	data, err := s.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sql": "SELECT * FROM ROOT r WHERE r.date<@p1"`)
	assert.NotContains(t, string(data), `\u003c`)
}
