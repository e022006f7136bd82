package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/docquery/internal/docsql"
	"github.com/roach88/docquery/internal/schema"
)

// ErrUnknownCollection is returned for operations on a collection that was
// never registered with EnsureCollection.
var ErrUnknownCollection = errors.New("unknown collection")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Reserved view columns.
const (
	docColumn = "_doc"
	seqColumn = "_seq"
)

// Collection describes how an entity's documents are exposed to queries.
type Collection struct {
	Name    string
	IDField string
	Fields  []schema.Field
}

// CollectionFor derives the collection of an entity.
func CollectionFor(e *schema.Entity) Collection {
	return Collection{Name: e.Container, IDField: e.IDField, Fields: e.Fields}
}

// viewName is the queryable view of a collection.
func viewName(name string) string {
	return `"coll_` + name + `"`
}

func (c Collection) validate() error {
	if !identRe.MatchString(c.Name) {
		return fmt.Errorf("invalid collection name %q", c.Name)
	}
	if c.IDField == "" {
		return fmt.Errorf("collection %s: id field is required", c.Name)
	}
	for _, f := range c.Fields {
		if !identRe.MatchString(f.Name) {
			return fmt.Errorf("collection %s: invalid field name %q", c.Name, f.Name)
		}
		if f.Name == docColumn || f.Name == seqColumn {
			return fmt.Errorf("collection %s: field name %q is reserved", c.Name, f.Name)
		}
		if f.Name == docsql.IDProperty && f.Name != c.IDField {
			return fmt.Errorf("collection %s: field %q collides with the id column", c.Name, f.Name)
		}
	}
	return nil
}

// viewSQL renders the view exposing each declared field as a column. The
// id field is always exposed as "id", matching what docsql renders.
func (c Collection) viewSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE VIEW %s AS SELECT id AS %s, doc AS %s, seq AS %s",
		viewName(c.Name), docsql.IDProperty, docColumn, seqColumn)
	for _, f := range c.Fields {
		if f.Name == c.IDField {
			continue
		}
		fmt.Fprintf(&b, `, json_extract(doc, '$.%s') AS "%s"`, f.Name, f.Name)
	}
	fmt.Fprintf(&b, " FROM documents WHERE container = '%s'", c.Name)
	return b.String()
}

// EnsureCollection registers c, (re)creating its view. It is idempotent.
func (s *Store) EnsureCollection(ctx context.Context, c Collection) error {
	if err := c.validate(); err != nil {
		return err
	}

	fields, err := json.Marshal(c.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collections (name, id_field, fields) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET id_field = excluded.id_field, fields = excluded.fields
		`, c.Name, c.IDField, string(fields))
		if err != nil {
			return fmt.Errorf("register collection %s: %w", c.Name, err)
		}

		if _, err := tx.ExecContext(ctx, "DROP VIEW IF EXISTS "+viewName(c.Name)); err != nil {
			return fmt.Errorf("drop view %s: %w", c.Name, err)
		}
		if _, err := tx.ExecContext(ctx, c.viewSQL()); err != nil {
			return fmt.Errorf("create view %s: %w", c.Name, err)
		}
		return nil
	})
}

// collection loads a registered collection.
func (s *Store) collection(ctx context.Context, name string) (Collection, error) {
	var (
		c      = Collection{Name: name}
		fields string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id_field, fields FROM collections WHERE name = ?`, name,
	).Scan(&c.IDField, &fields)
	if errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	if err != nil {
		return c, fmt.Errorf("load collection %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(fields), &c.Fields); err != nil {
		return c, fmt.Errorf("unmarshal fields of %s: %w", name, err)
	}
	return c, nil
}
