package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DefaultIDField is the id property used when an entity declares none.
const DefaultIDField = "id"

// CompileEntity parses a CUE value into an Entity.
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: QueryTest: { ... }`)
//	e, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.QueryTest")))
func CompileEntity(v cue.Value) (*Entity, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	e := &Entity{IDField: DefaultIDField}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		e.Name = labels[len(labels)-1].String()
	}

	var err error
	e.Container, err = optionalString(v, "container")
	if err != nil {
		return nil, err
	}
	if e.Container == "" {
		e.Container = strings.ToLower(e.Name)
	}

	id, err := optionalString(v, "id")
	if err != nil {
		return nil, err
	}
	if id != "" {
		e.IDField = id
	}

	e.Fields, err = parseFields(v)
	if err != nil {
		return nil, err
	}
	if len(e.Fields) == 0 {
		return nil, &CompileError{
			Entity:  e.Name,
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}
	if _, ok := e.Field(e.IDField); !ok {
		return nil, &CompileError{
			Entity:  e.Name,
			Field:   "id",
			Message: fmt.Sprintf("id field %q is not declared in fields", e.IDField),
			Pos:     v.Pos(),
		}
	}

	e.Methods, err = parseMethods(e, v)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// parseFields extracts property declarations in source order.
func parseFields(v cue.Value) ([]Field, error) {
	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, nil
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []Field
	for iter.Next() {
		ft, err := extractFieldType(iter.Value())
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: iter.Label(), Type: ft})
	}
	return fields, nil
}

// extractFieldType accepts either a CUE type (`date: int`) or a type name
// string (`date: "int"`).
func extractFieldType(v cue.Value) (FieldType, error) {
	if s, err := v.String(); err == nil {
		ft, err := ParseFieldType(s)
		if err != nil {
			return "", &CompileError{Field: "type", Message: err.Error(), Pos: v.Pos()}
		}
		return ft, nil
	}

	switch v.IncompleteKind() {
	case cue.StringKind:
		return TypeString, nil
	case cue.IntKind:
		return TypeInt, nil
	case cue.FloatKind, cue.NumberKind:
		return TypeFloat, nil
	case cue.BoolKind:
		return TypeBool, nil
	case cue.ListKind:
		return TypeList, nil
	case cue.StructKind:
		return TypeObject, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// parseMethods extracts derived query methods and checks that every
// referenced property resolves on e.
func parseMethods(e *Entity, v cue.Value) ([]Method, error) {
	methodVal := v.LookupPath(cue.ParsePath("method"))
	if !methodVal.Exists() {
		return nil, nil
	}

	iter, err := methodVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var methods []Method
	for iter.Next() {
		m, err := parseMethod(e, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func parseMethod(e *Entity, name string, v cue.Value) (Method, error) {
	m := Method{Name: name}
	field := "method." + name

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if whereVal.Exists() {
		groups, err := whereVal.List()
		if err != nil {
			return m, formatCUEError(err)
		}
		for groups.Next() {
			group, err := parseGroup(e, field, groups.Value())
			if err != nil {
				return m, err
			}
			m.Where = append(m.Where, group)
		}
	}

	sortVal := v.LookupPath(cue.ParsePath("sort"))
	if sortVal.Exists() {
		keys, err := sortVal.List()
		if err != nil {
			return m, formatCUEError(err)
		}
		for keys.Next() {
			var s SortSpec
			if err := keys.Value().Decode(&s); err != nil {
				return m, formatCUEError(err)
			}
			if _, ok := e.Field(s.Property); !ok {
				return m, &CompileError{
					Entity:  e.Name,
					Field:   field + ".sort",
					Message: fmt.Sprintf("unknown property %q", s.Property),
					Pos:     keys.Value().Pos(),
				}
			}
			m.Sort = append(m.Sort, s)
		}
	}

	return m, nil
}

func parseGroup(e *Entity, field string, v cue.Value) ([]PartSpec, error) {
	parts, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var group []PartSpec
	for parts.Next() {
		var p PartSpec
		if err := parts.Value().Decode(&p); err != nil {
			return nil, formatCUEError(err)
		}
		if p.Type == "" {
			p.Type = "SIMPLE_PROPERTY"
		}
		if _, ok := e.Field(p.Property); !ok {
			return nil, &CompileError{
				Entity:  e.Name,
				Field:   field + ".where",
				Message: fmt.Sprintf("unknown property %q", p.Property),
				Pos:     parts.Value().Pos(),
			}
		}
		group = append(group, p)
	}

	if len(group) == 0 {
		return nil, &CompileError{
			Entity:  e.Name,
			Field:   field + ".where",
			Message: "or-group has no parts",
			Pos:     v.Pos(),
		}
	}
	return group, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError is a definition error with its CUE source position.
type CompileError struct {
	Entity  string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if e.Entity != "" {
		field = e.Entity + "." + field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
