package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DriverName is the database/sql driver with the dialect functions registered.
const DriverName = "sqlite3_docquery"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: registerFunctions,
	})
}

type dialectFunc struct {
	name string
	impl any
}

var dialectFuncs = []dialectFunc{
	{"STARTSWITH", startsWith},
	{"ENDSWITH", endsWith},
	{"CONTAINS", contains},
	{"IS_DEFINED", isDefined},
	{"IS_NULL", isNull},
	{"LOWER", lower},
}

func registerFunctions(conn *sqlite3.SQLiteConn) error {
	for _, f := range dialectFuncs {
		if err := conn.RegisterFunc(f.name, f.impl, true); err != nil {
			return fmt.Errorf("register %s: %w", f.name, err)
		}
	}
	return nil
}

func startsWith(s, prefix any) bool {
	str, ok1 := s.(string)
	p, ok2 := prefix.(string)
	return ok1 && ok2 && strings.HasPrefix(str, p)
}

func endsWith(s, suffix any) bool {
	str, ok1 := s.(string)
	p, ok2 := suffix.(string)
	return ok1 && ok2 && strings.HasSuffix(str, p)
}

// contains reports whether haystack contains needle. A haystack holding a
// JSON array is searched element-wise; any other string by substring.
func contains(haystack, needle any) bool {
	str, ok := haystack.(string)
	if !ok {
		return false
	}

	if strings.HasPrefix(str, "[") {
		var elems []any
		if err := json.Unmarshal([]byte(str), &elems); err == nil {
			for _, e := range elems {
				if jsonEqual(e, needle) {
					return true
				}
			}
			return false
		}
	}

	n, ok := needle.(string)
	return ok && strings.Contains(str, n)
}

// jsonEqual compares a decoded JSON element with a SQLite value.
// SQLite has no boolean type: bound bools and json_extract of true/false
// both arrive as integer 1/0, so those match JSON booleans.
func jsonEqual(elem, v any) bool {
	switch x := v.(type) {
	case string:
		s, ok := elem.(string)
		return ok && s == x
	case int64:
		switch e := elem.(type) {
		case float64:
			return e == float64(x)
		case bool:
			return (e && x == 1) || (!e && x == 0)
		}
		return false
	case float64:
		f, ok := elem.(float64)
		return ok && f == x
	case bool:
		b, ok := elem.(bool)
		return ok && b == x
	case []byte:
		return x == nil && elem == nil
	default:
		return false
	}
}

func isDefined(v any) bool { return !sqlNull(v) }

func isNull(v any) bool { return sqlNull(v) }

// sqlNull reports whether a generic function argument is SQL NULL. The
// driver hands NULL to `any` parameters as a nil []byte.
func sqlNull(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.([]byte)
	return ok && b == nil
}

// lower folds strings with Unicode case rules. Other values pass through.
func lower(v any) any {
	if sqlNull(v) {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	// Casers are stateful, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}
