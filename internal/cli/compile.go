package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/repository"
	"github.com/roach88/docquery/internal/schema"
)

// QueryOptions are the flags shared by compile and run.
type QueryOptions struct {
	Entity string
	Method string
	Args   []string
}

func (q *QueryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.Entity, "entity", "e", "", "entity name (required)")
	cmd.Flags().StringVarP(&q.Method, "method", "m", "", "derived method name (required)")
	cmd.Flags().StringArrayVarP(&q.Args, "arg", "a", nil, "method argument as a YAML value (repeatable)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("method")
}

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	QueryOptions
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [specs-dir]",
		Short: "Compile a derived method call to a statement",
		Long: `Compile one call of a derived query method into its statement text and
parameter bindings, without touching a store.

Arguments are YAML values: numbers and booleans are typed, [a, b] is a list
and quoting keeps a value a string.

Example:
  docquery compile ./specs -e QueryTest -m findByIdBetween -a '"1"' -a '"5"'
  docquery compile ./specs -e QueryTest -m findByIdIn -a '[a, b]' --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, opts.specsDir(args), cmd)
		},
	}

	opts.QueryOptions.bind(cmd)
	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()

	entity, err := loadEntity(specsDir, opts.Entity, log)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot load entity", err)
	}

	args, err := parseArgs(opts.Args)
	if err != nil {
		_ = formatter.Error("E_ARGS", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	repo, err := repository.New(entity, nil,
		repository.WithLogger(log),
		repository.WithAlias(opts.alias()))
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid entity definition", err)
	}

	stmt, err := repo.Prepare(opts.Method, args...)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "compile failed", err)
	}

	if formatter.JSON() {
		return formatter.Success(stmt)
	}
	fmt.Fprintln(formatter.Writer, stmt.String())
	if !stmt.Sort.Unsorted() {
		fmt.Fprintf(formatter.Writer, "  order by %s\n", formatSort(stmt.Sort))
	}
	return nil
}

// loadEntity loads specsDir and resolves one entity.
func loadEntity(specsDir, name string, log *zap.Logger) (*schema.Entity, error) {
	if specsDir == "" {
		return nil, fmt.Errorf("no specs directory given")
	}
	loaded, errs := schema.LoadDir(specsDir, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	entity, ok := loaded.Entity(name)
	if !ok {
		return nil, fmt.Errorf("entity %q not found in %s", name, specsDir)
	}
	log.Debug("entity loaded",
		zap.String("entity", entity.Name),
		zap.String("container", entity.Container),
		zap.Int("methods", len(entity.Methods)))
	return entity, nil
}

// errorCode returns the criteria error code of err, or "E_QUERY".
func errorCode(err error) string {
	if code := criteria.ErrorCodeOf(err); code != "" {
		return string(code)
	}
	return "E_QUERY"
}

func formatSort(sort criteria.Sort) string {
	keys := make([]string, len(sort))
	for i, o := range sort {
		keys[i] = fmt.Sprintf("%s %s", o.Property, o.Direction)
	}
	return strings.Join(keys, ", ")
}
