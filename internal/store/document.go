package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/docsql"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// ErrNilDocument is returned by Insert for a nil document.
var ErrNilDocument = errors.New("nil document")

// Document is a decoded JSON document.
type Document = map[string]any

// Insert stores doc in the named collection and returns its id.
//
// The id is read from the collection's id field. When absent or empty one is
// taken from the store's IDGenerator (UUIDv7 by default) and written back
// into doc.
func (s *Store) Insert(ctx context.Context, container string, doc Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("insert into %s: %w", container, ErrNilDocument)
	}

	c, err := s.collection(ctx, container)
	if err != nil {
		return "", err
	}

	id := idString(doc[c.IDField])
	if id == "" {
		id = s.ids.Generate()
		doc[c.IDField] = id
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document %s: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (container, id, doc) VALUES (?, ?, ?)`,
		container, id, string(data))
	if err != nil {
		return "", fmt.Errorf("insert document %s into %s: %w", id, container, err)
	}
	return id, nil
}

// Get returns a single document by id.
func (s *Store) Get(ctx context.Context, container, id string) (Document, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE container = ? AND id = ?`, container, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, container, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return decodeDocument(data)
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, container string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE container = ?`, container,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", container, err)
	}
	return n, nil
}

// Query executes a compiled statement against a collection.
//
// The statement's criteria runs verbatim as the WHERE clause; its sort keys
// become the ORDER BY, followed by insertion order.
func (s *Store) Query(ctx context.Context, container string, stmt *docsql.Statement) ([]Document, error) {
	if stmt == nil {
		return nil, fmt.Errorf("nil statement")
	}

	c, err := s.collection(ctx, container)
	if err != nil {
		return nil, err
	}

	query, err := c.selectSQL(stmt)
	if err != nil {
		return nil, err
	}

	args, err := namedArgs(stmt.Params)
	if err != nil {
		return nil, err
	}

	s.log.Debug("executing query",
		zap.String("container", container),
		zap.String("sql", query),
		zap.Int("params", len(args)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", container, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// selectSQL builds the executable SELECT for stmt.
func (c Collection) selectSQL(stmt *docsql.Statement) (string, error) {
	alias := stmt.Alias
	if alias == "" {
		alias = docsql.DefaultAlias
	}
	if !identRe.MatchString(alias) {
		return "", fmt.Errorf("invalid alias %q", alias)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s.%s FROM %s %s", alias, docColumn, viewName(c.Name), alias)
	if stmt.Criteria != "" {
		b.WriteString(" WHERE ")
		b.WriteString(stmt.Criteria)
	}

	b.WriteString(" ORDER BY ")
	if !stmt.Sort.Unsorted() {
		for _, o := range stmt.Sort {
			col, err := c.column(o.Property)
			if err != nil {
				return "", err
			}
			dir, err := criteria.ParseDirection(string(o.Direction))
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s.%s %s, ", alias, col, dir)
		}
	}
	fmt.Fprintf(&b, "%s.%s ASC", alias, seqColumn)
	return b.String(), nil
}

// column maps a sort property to its quoted view column.
func (c Collection) column(property string) (string, error) {
	if property == c.IDField {
		return docsql.IDProperty, nil
	}
	for _, f := range c.Fields {
		if f.Name == property {
			return `"` + f.Name + `"`, nil
		}
	}
	return "", fmt.Errorf("collection %s: cannot sort by %q", c.Name, property)
}

// namedArgs converts @pN bindings to sql.Named arguments. Lists and objects
// are bound as JSON text so they compare against the view's JSON columns.
func namedArgs(params docsql.Params) ([]any, error) {
	args := make([]any, 0, len(params))
	for _, p := range params {
		v, err := bindValue(p.Value)
		if err != nil {
			return nil, fmt.Errorf("bind %s: %w", p.Name, err)
		}
		args = append(args, sql.Named(strings.TrimPrefix(p.Name, "@"), v))
	}
	return args, nil
}

func bindValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return v, nil
	}
}

func decodeDocument(data string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
