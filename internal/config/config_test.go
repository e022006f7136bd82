package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "specs", c.Specs)
	assert.Equal(t, "r", c.Alias)
	assert.Equal(t, "docquery.db", c.Store.Path)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docquery.yaml")
	content := `
specs: ./entities
alias: doc
store:
  path: /tmp/docs.db
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./entities", c.Specs)
	assert.Equal(t, "doc", c.Alias)
	assert.Equal(t, "/tmp/docs.db", c.Store.Path)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "specs", c.Specs)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCQUERY_LOG_LEVEL", "error")
	t.Setenv("DOCQUERY_STORE_PATH", "env.db")
	t.Setenv("DOCQUERY_SPECS", "env-specs")

	path := filepath.Join(t.TempDir(), "docquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nspecs: file-specs\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", c.Log.Level, "environment wins over file")
	assert.Equal(t, "env.db", c.Store.Path)
	assert.Equal(t, "env-specs", c.Specs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	c, err := NewConfig("alias: d\nlog:\n  format: json\n", "")
	require.NoError(t, err)
	assert.Equal(t, "d", c.Alias)
	assert.Equal(t, "json", c.Log.Format)

	_, err = NewConfig("alias: [unclosed", "yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"empty alias", "alias: \"\"\n", "alias"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.content, "yaml")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
