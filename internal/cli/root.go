package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/config"
	"github.com/roach88/docquery/internal/docsql"
	"github.com/roach88/docquery/internal/logging"
)

// RootOptions holds global flags for all commands, plus the configuration and
// logger resolved from them before a subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the docquery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "docquery",
		Short: "docquery - derived queries for document stores",
		Long: `Compile repository-style derived query methods into parameterized
SQL-like statements and run them against a document store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates global flags and builds the config and logger.
func (o *RootOptions) setup() error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create logger", err)
	}

	o.Config = cfg
	o.Logger = log
	return nil
}

// logger returns the configured logger, or a no-op logger when a subcommand
// runs without the root's setup (as in tests).
func (o *RootOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// alias returns the configured statement alias.
func (o *RootOptions) alias() string {
	if o.Config == nil || o.Config.Alias == "" {
		return docsql.DefaultAlias
	}
	return o.Config.Alias
}

// specsDir returns dir, falling back to the configured specs directory.
func (o *RootOptions) specsDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if o.Config != nil {
		return o.Config.Specs
	}
	return ""
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
