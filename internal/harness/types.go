package harness

import "github.com/roach88/docquery/internal/docsql"

// StepResult records what one step actually produced.
type StepResult struct {
	Call   string        `yaml:"call" json:"call"`
	Args   []any         `yaml:"args,omitempty" json:"args,omitempty"`
	SQL    string        `yaml:"sql,omitempty" json:"sql,omitempty"`
	Params docsql.Params `yaml:"params,omitempty" json:"params,omitempty"`
	IDs    []string      `yaml:"ids,omitempty" json:"ids,omitempty"`
	Error  string        `yaml:"error,omitempty" json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Steps:    []StepResult{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
