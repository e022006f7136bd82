package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/docquery/internal/criteria"
)

// Scenario is a conformance scenario for one entity's derived queries.
// Each step calls a method and checks the compiled statement, the selected
// documents, or the error it fails with.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE entity definitions.
	// A relative path is resolved against the scenario file's directory.
	Specs string `yaml:"specs"`

	// Entity names the entity whose methods the steps call.
	Entity string `yaml:"entity"`

	// Documents are inserted into a fresh in-memory store before the steps run.
	Documents []map[string]any `yaml:"documents,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions check static properties of the entity's methods.
	// Supported types: constrains, arguments
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step calls one derived method.
type Step struct {
	// Call is the method name.
	Call string `yaml:"call"`

	// Args are the method arguments in order.
	Args []any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome. If nil, the step only has to
	// compile without error.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step. Unset fields are not checked.
type Expect struct {
	// SQL is the exact statement text.
	SQL string `yaml:"sql,omitempty"`

	// Params are the exact parameter bindings keyed by name ("@p1").
	Params map[string]any `yaml:"params,omitempty"`

	// IDs are the ids of the selected documents, in result order.
	// Setting IDs or Count executes the statement against the store.
	IDs []string `yaml:"ids,omitempty"`

	// Count is the number of selected documents.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected error code (e.g. "ARITY_MISMATCH").
	Error string `yaml:"error,omitempty"`
}

// executes reports whether the step must run against the store.
func (e *Expect) executes() bool {
	return e != nil && (e.IDs != nil || e.Count != nil)
}

// Assertion checks a static property of a method.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Method is the method under test.
	Method string `yaml:"method"`

	// Field is the property tested by constrains.
	Field string `yaml:"field,omitempty"`

	// Want is the expected constrains result.
	Want bool `yaml:"want,omitempty"`

	// Kind optionally names the operator (e.g. "BETWEEN") that must test
	// Field. Only valid with want: true.
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected argument count (used by arguments).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertConstrains = "constrains"
	AssertArguments  = "arguments"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml scenario in dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs is required")
	}
	if s.Entity == "" {
		return fmt.Errorf("entity is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, doc := range s.Documents {
		if doc == nil {
			return fmt.Errorf("documents[%d]: document must be a mapping", i)
		}
	}

	for i, step := range s.Steps {
		if step.Call == "" {
			return fmt.Errorf("steps[%d]: call is required", i)
		}
		if step.Expect != nil && step.Expect.Error != "" &&
			(step.Expect.SQL != "" || step.Expect.executes()) {
			return fmt.Errorf("steps[%d]: error cannot be combined with sql, ids or count", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertConstrains:
			if a.Field == "" {
				return fmt.Errorf("assertions[%d]: constrains requires field", i)
			}
			if a.Kind != "" {
				if !a.Want {
					return fmt.Errorf("assertions[%d]: kind requires want: true", i)
				}
				if _, err := criteria.ParseKind(a.Kind); err != nil {
					return fmt.Errorf("assertions[%d]: %w", i, err)
				}
			}
		case AssertArguments:
		default:
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
		if a.Method == "" {
			return fmt.Errorf("assertions[%d]: method is required", i)
		}
	}

	return nil
}
