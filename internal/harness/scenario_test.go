package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "ok.yaml", `
name: ok
description: "a valid scenario"
specs: specs
entity: QueryTest
documents:
  - { id: "1", message: hi }
steps:
  - call: findByIdIn
    args: [["1", "2"]]
    expect:
      sql: "SELECT * FROM ROOT r WHERE r.id IN (@p1,@p2)"
      params: { "@p1": "1" }
      count: 1
assertions:
  - type: arguments
    method: findByIdIn
    count: 1
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "ok", s.Name)
	assert.Equal(t, filepath.Join(dir, "specs"), s.Specs, "relative specs resolve against the file")
	assert.Equal(t, "QueryTest", s.Entity)
	require.Len(t, s.Documents, 1)
	assert.Equal(t, "hi", s.Documents[0]["message"])

	require.Len(t, s.Steps, 1)
	step := s.Steps[0]
	assert.Equal(t, "findByIdIn", step.Call)
	assert.Equal(t, []any{[]any{"1", "2"}}, step.Args)
	require.NotNil(t, step.Expect)
	assert.Equal(t, map[string]any{"@p1": "1"}, step.Expect.Params)
	require.NotNil(t, step.Expect.Count)
	assert.Equal(t, 1, *step.Expect.Count)
	assert.True(t, step.Expect.executes())

	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertArguments, s.Assertions[0].Type)
}

func TestLoadScenario_AbsoluteSpecsKept(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")
	path := writeScenario(t, dir, "abs.yaml", `
name: abs
description: d
specs: `+abs+`
entity: E
steps:
  - call: m
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, abs, s.Specs)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "typo.yaml", `
name: typo
description: d
specs: specs
entity: E
step:
  - call: m
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nspecs: s\nentity: E\nsteps: [{call: m}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nspecs: s\nentity: E\nsteps: [{call: m}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing specs",
			content: "name: n\ndescription: d\nentity: E\nsteps: [{call: m}]\n",
			wantErr: "specs is required",
		},
		{
			name:    "missing entity",
			content: "name: n\ndescription: d\nspecs: s\nsteps: [{call: m}]\n",
			wantErr: "entity is required",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\n",
			wantErr: "steps list is required",
		},
		{
			name:    "step without call",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{args: [1]}]\n",
			wantErr: "steps[0]: call is required",
		},
		{
			name:    "error with ids",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m, expect: {error: X, ids: [\"1\"]}}]\n",
			wantErr: "error cannot be combined",
		},
		{
			name:    "constrains without field",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m}]\nassertions: [{type: constrains, method: m}]\n",
			wantErr: "constrains requires field",
		},
		{
			name:    "assertion without method",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m}]\nassertions: [{type: arguments}]\n",
			wantErr: "method is required",
		},
		{
			name:    "kind without want",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m}]\nassertions: [{type: constrains, method: m, field: f, kind: EQUAL}]\n",
			wantErr: "kind requires want: true",
		},
		{
			name:    "unknown kind",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m}]\nassertions: [{type: constrains, method: m, field: f, want: true, kind: SOUNDS_LIKE}]\n",
			wantErr: `unknown criteria kind "SOUNDS_LIKE"`,
		},
		{
			name:    "null document",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\ndocuments: [{id: \"1\"}, ~]\nsteps: [{call: m}]\n",
			wantErr: "documents[1]: document must be a mapping",
		},
		{
			name:    "unknown assertion type",
			content: "name: n\ndescription: d\nspecs: s\nentity: E\nsteps: [{call: m}]\nassertions: [{type: trace_contains, method: m}]\n",
			wantErr: `unknown type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("../../testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "definition_errors", scenarios[0].Name)
	assert.Equal(t, "derived_queries", scenarios[1].Name)
}

func TestLoadScenarios_Empty(t *testing.T) {
	_, err := LoadScenarios(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files found")
}

func TestLoadScenarios_NamesBadFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "bad.yml", "name: bad\n")

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yml")
}
