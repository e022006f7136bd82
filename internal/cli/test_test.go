package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// copyScenario copies a fixture scenario into dir, pointing it at the shared specs.
func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(scenariosDir, name+".yaml"))
	require.NoError(t, err)

	abs, err := filepath.Abs(specsDir)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte("specs: ../specs"), []byte("specs: "+abs), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0644))
}

func TestTest_FixtureScenarios(t *testing.T) {
	out, err := executeTest(t, "text", scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ definition_errors")
	assert.Contains(t, out, "✓ derived_queries")
	assert.Contains(t, out, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_JSON(t *testing.T) {
	out, err := executeTest(t, "json", scenariosDir, "--filter", "derived_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, "derived_queries", resp.Data.Scenarios[0].Name)
}

func TestTest_GoldenUpdateAndMismatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "definition_errors")

	out, err := executeTest(t, "text", dir, "--update")
	require.NoError(t, err, out)

	golden := filepath.Join(dir, "golden", "definition_errors.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error": "INVALID_OPERAND_SHAPE"`)

	out, err = executeTest(t, "text", dir)
	require.NoError(t, err, out)

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, err = executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "do not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs(specsDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(`
name: wrong
description: "expects the wrong statement"
specs: `+abs+`
entity: QueryTest
steps:
  - call: findByIdIn
    args: [[a]]
    expect:
      sql: "SELECT 1"
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: broken\n"), 0644))

	out, err := executeTest(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Failed)

	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "broken.yml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "wrong", resp.Data.Scenarios[1].Name)
	assert.Contains(t, resp.Data.Scenarios[1].Errors[0], "sql mismatch")
}

func TestTest_NoScenarios(t *testing.T) {
	out, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := executeTest(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFindScenarioFiles(t *testing.T) {
	files, err := findScenarioFiles(scenariosDir, "")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "definition_errors.yaml", filepath.Base(files[0]))

	_, err = findScenarioFiles(scenariosDir, "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "derived_queries.golden"),
		goldenFilePath(filepath.Join("scenarios", "derived_queries.yaml")))
}
