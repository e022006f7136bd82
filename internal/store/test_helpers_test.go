package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/docquery/internal/schema"
)

type schemaField = schema.Field

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// queryTestCollection mirrors the QueryTest entity used across the tests.
func queryTestCollection() Collection {
	return Collection{
		Name:    "querytest",
		IDField: "id",
		Fields: []schema.Field{
			{Name: "id", Type: schema.TypeString},
			{Name: "message", Type: schema.TypeString},
			{Name: "date", Type: schema.TypeInt},
			{Name: "testValue", Type: schema.TypeString},
			{Name: "tags", Type: schema.TypeList},
			{Name: "active", Type: schema.TypeBool},
		},
	}
}

// seedQueryTest registers the querytest collection and inserts docs.
func seedQueryTest(t *testing.T, s *Store, docs ...Document) {
	t.Helper()
	ctx := context.Background()
	if err := s.EnsureCollection(ctx, queryTestCollection()); err != nil {
		t.Fatalf("EnsureCollection() failed: %v", err)
	}
	for _, d := range docs {
		if _, err := s.Insert(ctx, "querytest", d); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}
}
