package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// parseArgs decodes each --arg value as a YAML flow value, so "3" is an
// int, "true" a bool, "[a, b]" a list and a quoted '"3"' stays a string.
func parseArgs(raw []string) ([]any, error) {
	args := make([]any, 0, len(raw))
	for i, r := range raw {
		var v any
		if err := yaml.Unmarshal([]byte(r), &v); err != nil {
			return nil, fmt.Errorf("--arg #%d %q: %w", i+1, r, err)
		}
		args = append(args, v)
	}
	return args, nil
}

// loadDocuments reads a YAML (or JSON) file holding a list of documents.
func loadDocuments(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse documents %s: %w", path, err)
	}
	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("documents %s: entry %d is not a mapping", path, i)
		}
	}
	return docs, nil
}
