package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/derive"
	"github.com/roach88/docquery/internal/docsql"
	"github.com/roach88/docquery/internal/schema"
	"github.com/roach88/docquery/internal/store"
)

// ErrUnknownMethod is returned when a method name is not declared on the entity.
var ErrUnknownMethod = errors.New("unknown method")

// Executor runs compiled statements against a document container.
// *store.Store satisfies it.
type Executor interface {
	Query(ctx context.Context, container string, stmt *docsql.Statement) ([]store.Document, error)
}

// Repository answers derived queries for one entity.
type Repository struct {
	entity   *schema.Entity
	methods  map[string]*method
	creator  *derive.Creator
	compiler *docsql.Compiler
	exec     Executor
	log      *zap.Logger
}

// Option configures a Repository.
type Option func(*repoOptions)

type repoOptions struct {
	log   *zap.Logger
	alias string
}

// WithLogger sets the logger for query tracing.
func WithLogger(log *zap.Logger) Option {
	return func(o *repoOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithAlias sets the document alias used in compiled statements.
func WithAlias(alias string) Option {
	return func(o *repoOptions) {
		if alias != "" {
			o.alias = alias
		}
	}
}

// New creates a repository for entity. Every declared method is resolved and
// validated up front, so an unsupported part fails here rather than on first
// call. exec may be nil for a repository that only prepares statements.
func New(entity *schema.Entity, exec Executor, opts ...Option) (*Repository, error) {
	if entity == nil {
		return nil, fmt.Errorf("nil entity")
	}

	o := repoOptions{log: zap.NewNop(), alias: docsql.DefaultAlias}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Repository{
		entity:   entity,
		methods:  make(map[string]*method, len(entity.Methods)),
		creator:  derive.NewCreator(derive.WithLogger(o.log)),
		compiler: docsql.New(docsql.WithAlias(o.alias)),
		exec:     exec,
		log:      o.log.With(zap.String("entity", entity.Name)),
	}

	for i := range entity.Methods {
		m := &entity.Methods[i]
		tree, order, err := BuildMethod(entity, m)
		if err != nil {
			return nil, err
		}
		r.methods[m.Name] = &method{
			name: m.Name,
			tree: tree,
			sort: order,
			args: derive.NumberOfArguments(tree),
		}
	}

	return r, nil
}

// Entity returns the entity this repository serves.
func (r *Repository) Entity() *schema.Entity { return r.entity }

// Methods returns the declared method names, sorted.
func (r *Repository) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumberOfArguments reports how many arguments a method takes.
func (r *Repository) NumberOfArguments(name string) (int, error) {
	m, err := r.method(name)
	if err != nil {
		return 0, err
	}
	return m.args, nil
}

// Query builds the criteria query for a method call.
func (r *Repository) Query(name string, args ...any) (*criteria.Query, error) {
	m, err := r.method(name)
	if err != nil {
		return nil, err
	}
	if len(args) != m.args {
		return nil, criteria.NewCallArityMismatch(name, m.args, len(args))
	}
	return r.creator.CreateQuery(m.tree, derive.NewArguments(args...), m.sort)
}

// Prepare builds and compiles a method call into a statement.
func (r *Repository) Prepare(name string, args ...any) (*docsql.Statement, error) {
	q, err := r.Query(name, args...)
	if err != nil {
		return nil, err
	}
	return r.Compile(q)
}

// Compile renders a programmatic query against this entity's id field.
func (r *Repository) Compile(q *criteria.Query) (*docsql.Statement, error) {
	stmt, err := r.compiler.Statement(q, r.entity.IDField)
	if err != nil {
		return nil, err
	}
	r.log.Debug("compiled statement",
		zap.String("sql", stmt.Text),
		zap.Int("params", len(stmt.Params)))
	return stmt, nil
}

// Find executes a method call.
func (r *Repository) Find(ctx context.Context, name string, args ...any) ([]store.Document, error) {
	stmt, err := r.Prepare(name, args...)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, stmt)
}

// FindBy executes a programmatic query.
func (r *Repository) FindBy(ctx context.Context, q *criteria.Query) ([]store.Document, error) {
	stmt, err := r.Compile(q)
	if err != nil {
		return nil, err
	}
	return r.execute(ctx, stmt)
}

// Constrains reports whether a method's criteria tests field. The tree is
// built with placeholder arguments, so no call is needed.
func (r *Repository) Constrains(name, field string) (bool, error) {
	q, err := r.placeholderQuery(name)
	if err != nil {
		return false, err
	}
	return criteria.Constrains(q.Criteria, field), nil
}

// Operators returns the kinds a method's criteria applies to field, in
// tree order.
func (r *Repository) Operators(name, field string) ([]criteria.Kind, error) {
	q, err := r.placeholderQuery(name)
	if err != nil {
		return nil, err
	}
	leaves := criteria.Find(q.Criteria, field)
	kinds := make([]criteria.Kind, len(leaves))
	for i, l := range leaves {
		kinds[i] = l.Kind()
	}
	return kinds, nil
}

func (r *Repository) placeholderQuery(name string) (*criteria.Query, error) {
	m, err := r.method(name)
	if err != nil {
		return nil, err
	}
	return r.creator.CreateQuery(m.tree, derive.NewArguments(make([]any, m.args)...), m.sort)
}

func (r *Repository) execute(ctx context.Context, stmt *docsql.Statement) ([]store.Document, error) {
	if r.exec == nil {
		return nil, fmt.Errorf("repository %s has no executor", r.entity.Name)
	}
	docs, err := r.exec.Query(ctx, r.entity.Container, stmt)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	r.log.Debug("query executed", zap.Int("results", len(docs)))
	return docs, nil
}

func (r *Repository) method(name string) (*method, error) {
	m, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, r.entity.Name, name)
	}
	return m, nil
}
