package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/docsql"
	"github.com/roach88/docquery/internal/repository"
	"github.com/roach88/docquery/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	QueryOptions
	Database string
	Load     string
}

// RunResult is the output of run.
type RunResult struct {
	Statement *docsql.Statement `json:"statement"`
	Documents []store.Document  `json:"documents"`
	Count     int               `json:"count"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [specs-dir]",
		Short: "Execute a derived method against a document store",
		Long: `Execute one call of a derived query method against a SQLite document
store, creating the store and the entity's collection if needed.

Documents from --load (a YAML or JSON list) are inserted before the query.

Example:
  docquery run ./specs --db ./docs.db --load docs.yaml -e QueryTest -m findByMessageContaining -a hello
  docquery run ./specs -e QueryTest -m findByIdIn -a '[a, b]' --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, opts.specsDir(args), cmd)
		},
	}

	opts.QueryOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to store.path from config)")
	cmd.Flags().StringVar(&opts.Load, "load", "", "YAML or JSON file of documents to insert first")

	return cmd
}

func runQuery(opts *RunOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

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

	dbPath := opts.Database
	if dbPath == "" && opts.Config != nil {
		dbPath = opts.Config.Store.Path
	}
	if dbPath == "" {
		_ = formatter.Error("E_STORE", "no database path given", nil)
		return NewExitError(ExitCommandError, "no database path given")
	}

	log.Info("opening store", zap.String("path", dbPath))
	st, err := store.Open(dbPath, store.WithLogger(log))
	if err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("error closing store", zap.Error(closeErr))
		}
	}()

	if err := st.EnsureCollection(ctx, store.CollectionFor(entity)); err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to register collection", err)
	}

	if opts.Load != "" {
		docs, err := loadDocuments(opts.Load)
		if err != nil {
			_ = formatter.Error("E_LOAD", err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot load documents", err)
		}
		for i, doc := range docs {
			if _, err := st.Insert(ctx, entity.Container, doc); err != nil {
				_ = formatter.Error("E_STORE", err.Error(), nil)
				return WrapExitError(ExitCommandError, fmt.Sprintf("failed to insert document %d", i), err)
			}
		}
		log.Info("documents loaded", zap.String("file", opts.Load), zap.Int("count", len(docs)))
	}

	repo, err := repository.New(entity, st,
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
	formatter.VerboseLog("%s", stmt)

	docs, err := st.Query(ctx, entity.Container, stmt)
	if err != nil {
		_ = formatter.Error("E_QUERY", err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if formatter.JSON() {
		return formatter.Success(RunResult{Statement: stmt, Documents: docs, Count: len(docs)})
	}

	for _, doc := range docs {
		line, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(formatter.Writer, string(line))
	}
	fmt.Fprintf(formatter.Writer, "%d document(s)\n", len(docs))
	return nil
}
