package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/repository"
	"github.com/roach88/docquery/internal/schema"
	"github.com/roach88/docquery/internal/store"
	"github.com/roach88/docquery/internal/testutil"
)

// Error codes recorded for failures that are not criteria errors.
const (
	CodeUnknownMethod = "UNKNOWN_METHOD"
	CodeError         = "ERROR"
)

// Harness executes scenario steps against one entity.
type Harness struct {
	store *store.Store
	repo  *repository.Repository
	log   *zap.Logger
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	log *zap.Logger
}

// WithLogger sets the logger passed to the store and repository.
func WithLogger(log *zap.Logger) Option {
	return func(o *runOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation.
//
// Execution flow:
//  1. Load the specs directory and resolve the entity
//  2. Open an in-memory store, register the collection, seed documents
//  3. Prepare each step, executing it when it expects documents
//  4. Evaluate assertions
//
// An error is returned only when the scenario cannot be set up; failed
// expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	loaded, errs := schema.LoadDir(scenario.Specs, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errs[0])
	}
	entity, ok := loaded.Entity(scenario.Entity)
	if !ok {
		return nil, fmt.Errorf("entity %q not found in %s", scenario.Entity, scenario.Specs)
	}

	// Documents without an id get doc-1, doc-2, ... so runs are repeatable.
	st, err := store.Open(":memory:",
		store.WithLogger(o.log),
		store.WithIDGenerator(testutil.NewSequenceIDGenerator("doc-")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.EnsureCollection(ctx, store.CollectionFor(entity)); err != nil {
		return nil, fmt.Errorf("failed to register collection: %w", err)
	}
	for i, doc := range scenario.Documents {
		if _, err := st.Insert(ctx, entity.Container, doc); err != nil {
			return nil, fmt.Errorf("failed to insert document %d: %w", i, err)
		}
	}

	repo, err := repository.New(entity, st, repository.WithLogger(o.log))
	if err != nil {
		return nil, fmt.Errorf("invalid entity definition: %w", err)
	}

	h := &Harness{store: st, repo: repo, log: o.log}

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	for _, msg := range EvaluateAssertions(repo, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// executeStep prepares one call, runs it if needed, and checks its expectation.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) {
	sr := StepResult{Call: step.Call, Args: step.Args}
	defer func() { result.Steps = append(result.Steps, sr) }()

	stmt, err := h.repo.Prepare(step.Call, step.Args...)
	if err != nil {
		sr.Error = ErrorCode(err)
		h.checkError(i, step, sr, err, result)
		return
	}
	sr.SQL = stmt.Text
	sr.Params = stmt.Params

	exp := step.Expect
	if exp == nil {
		return
	}
	if exp.Error != "" {
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got none", i, step.Call, exp.Error))
		return
	}

	if exp.SQL != "" && exp.SQL != stmt.Text {
		result.AddError(fmt.Sprintf("step %d (%s): sql mismatch\n  expected: %s\n  actual:   %s",
			i, step.Call, exp.SQL, stmt.Text))
	}
	if exp.Params != nil && !reflect.DeepEqual(exp.Params, stmt.Bindings()) {
		result.AddError(fmt.Sprintf("step %d (%s): params mismatch: expected %v, got %v",
			i, step.Call, exp.Params, stmt.Bindings()))
	}

	if !exp.executes() {
		return
	}

	docs, err := h.store.Query(ctx, h.repo.Entity().Container, stmt)
	if err != nil {
		sr.Error = ErrorCode(err)
		result.AddError(fmt.Sprintf("step %d (%s): execution failed: %v", i, step.Call, err))
		return
	}
	sr.IDs = documentIDs(docs, h.repo.Entity().IDField)

	if exp.IDs != nil && !reflect.DeepEqual(exp.IDs, sr.IDs) {
		result.AddError(fmt.Sprintf("step %d (%s): ids mismatch: expected %v, got %v",
			i, step.Call, exp.IDs, sr.IDs))
	}
	if exp.Count != nil && *exp.Count != len(docs) {
		result.AddError(fmt.Sprintf("step %d (%s): count mismatch: expected %d, got %d",
			i, step.Call, *exp.Count, len(docs)))
	}
}

func (h *Harness) checkError(i int, step Step, sr StepResult, err error, result *Result) {
	if step.Expect == nil || step.Expect.Error == "" {
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, step.Call, err))
		return
	}
	if step.Expect.Error != sr.Error {
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s (%v)",
			i, step.Call, step.Expect.Error, sr.Error, err))
	}
}

// ErrorCode classifies err for comparison with an expected error.
func ErrorCode(err error) string {
	if code := criteria.ErrorCodeOf(err); code != "" {
		return string(code)
	}
	if errors.Is(err, repository.ErrUnknownMethod) {
		return CodeUnknownMethod
	}
	return CodeError
}

func documentIDs(docs []store.Document, idField string) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = fmt.Sprint(d[idField])
	}
	return ids
}
