package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/repository"
	"github.com/roach88/docquery/internal/schema"
)

// ErrCodeMethod marks a method definition that does not resolve.
const ErrCodeMethod = "E120"

// ValidationError is one problem found in a specs directory.
type ValidationError struct {
	Code    string `json:"code"`
	Entity  string `json:"entity,omitempty"`
	Method  string `json:"method,omitempty"`
	Message string `json:"message"`
}

// EntitySummary describes a valid entity.
type EntitySummary struct {
	Name      string `json:"name"`
	Container string `json:"container"`
	Methods   int    `json:"methods"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Entities []EntitySummary   `json:"entities,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate entity definitions and their derived methods",
		Long: `Validate the CUE entity definitions in a specs directory.

Every entity is compiled and every derived method is resolved against the
entity's fields, so an unknown property or an unsupported part type is
reported before any query runs. Without an argument the configured specs
directory is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.specsDir(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()

	result, err := ValidateSpecsDir(specsDir, log)
	if err != nil {
		code, msg := loadErrorParts(err)
		_ = formatter.Error(code, msg, nil)
		return WrapExitError(ExitCommandError, "cannot load specs", err)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	for _, e := range result.Entities {
		formatter.VerboseLog("entity %s (container %s): %d method(s)", e.Name, e.Container, e.Methods)
	}
	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d entities)\n", len(result.Entities))
	return nil
}

// ValidateSpecsDir validates every entity and method in specsDir.
// The error is non-nil only when the directory itself cannot be loaded.
func ValidateSpecsDir(specsDir string, log *zap.Logger) (*ValidationResult, error) {
	loaded, loadErrs := schema.LoadDir(specsDir, schema.LoadModeCollectAll)
	if loaded == nil {
		return nil, loadErrs[0]
	}
	log.Debug("specs loaded",
		zap.String("dir", specsDir),
		zap.Int("files", loaded.FileCount),
		zap.Int("entities", len(loaded.Entities)))

	result := &ValidationResult{}
	for _, err := range loadErrs {
		code, msg := loadErrorParts(err)
		result.Errors = append(result.Errors, ValidationError{Code: code, Message: msg})
	}

	for i := range loaded.Entities {
		e := &loaded.Entities[i]
		ok := true
		for j := range e.Methods {
			m := &e.Methods[j]
			if _, _, err := repository.BuildMethod(e, m); err != nil {
				ok = false
				result.Errors = append(result.Errors, ValidationError{
					Code:    methodErrorCode(err),
					Entity:  e.Name,
					Method:  m.Name,
					Message: err.Error(),
				})
			}
		}
		if ok {
			result.Entities = append(result.Entities, EntitySummary{
				Name:      e.Name,
				Container: e.Container,
				Methods:   len(e.Methods),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// loadErrorParts splits a schema.LoadError into its code and message.
func loadErrorParts(err error) (string, string) {
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return schema.ErrCodeGeneric, err.Error()
}

// methodErrorCode reports criteria error codes as-is.
func methodErrorCode(err error) string {
	if code := criteria.ErrorCodeOf(err); code != "" {
		return string(code)
	}
	return ErrCodeMethod
}

func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.JSON() {
		first := result.Errors[0]
		if err := formatter.Fail(first.Code, first.Message, result); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", e.Code, e.Message)
	}
	return failure
}
