package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSpecs(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entity.cue"), []byte(content), 0644))
	return dir
}

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidSpecs(t *testing.T) {
	out, err := executeValidate(t, "text", specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All specs valid (1 entities)")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, err := executeValidate(t, "json", specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Entities, 1)
	assert.Equal(t, EntitySummary{Name: "QueryTest", Container: "querytest", Methods: 6}, resp.Data.Entities[0])
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := executeValidate(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateMethodErrors(t *testing.T) {
	dir := writeSpecs(t, `package specs

entity: Note: {
	fields: {
		id:   string
		body: string
	}
	method: findByBodyNotContaining: {
		where: [[{property: "body", type: "NOT_CONTAINING"}]]
	}
	method: findByBodyNear: {
		where: [[{property: "body", type: "NEAR"}]]
	}
	method: findByBodyRegex: {
		where: [[{property: "body", type: "NO_SUCH_PART"}]]
	}
}
`)

	out, err := executeValidate(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Entities)
	require.Len(t, resp.Data.Errors, 3)

	byMethod := map[string]ValidationError{}
	for _, e := range resp.Data.Errors {
		byMethod[e.Method] = e
	}
	assert.Equal(t, "UNSUPPORTED_OPERATOR", byMethod["findByBodyNotContaining"].Code)
	assert.Equal(t, "UNSUPPORTED_OPERATOR", byMethod["findByBodyNear"].Code)
	assert.Contains(t, byMethod["findByBodyNear"].Message, "operator=NEAR")
	assert.Equal(t, ErrCodeMethod, byMethod["findByBodyRegex"].Code)
	assert.Contains(t, byMethod["findByBodyRegex"].Message, "NO_SUCH_PART")
}

func TestValidateEntityErrorsText(t *testing.T) {
	dir := writeSpecs(t, `package specs

entity: Broken: {
	id: "key"
	fields: {
		id: string
	}
}
`)

	out, err := executeValidate(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E102")
}

func TestValidateSpecsDir(t *testing.T) {
	result, err := ValidateSpecsDir(specsDir, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	_, err = ValidateSpecsDir(t.TempDir(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
}
