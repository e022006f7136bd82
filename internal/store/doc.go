// Package store provides a SQLite-backed document store that executes the
// criteria dialect rendered by package docsql.
//
// Documents are JSON objects kept in a single documents table. Each
// collection gets a view exposing its declared properties as columns, so a
// compiled criteria string such as
//
//	STARTSWITH(LOWER(r.message),LOWER(@p1)) AND r.id<@p2
//
// runs verbatim as the WHERE clause of
//
//	SELECT r._doc FROM "coll_querytest" r WHERE ...
//
// with @pN bound through sql.Named.
//
// # Dialect functions
//
// STARTSWITH, ENDSWITH, CONTAINS, IS_DEFINED, IS_NULL and a Unicode-aware
// LOWER are registered on every connection. LENGTH is SQLite's own.
//
// # Limitations
//
//   - IS_DEFINED cannot tell a missing property from an explicit null.
//   - Nested property paths (address.city) compile but are not columns of
//     the view and fail at execution.
//   - List and object values are compared as JSON text, except that CONTAINS
//     tests element membership when its first argument is a JSON array.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
