package repository

import (
	"fmt"

	"github.com/roach88/docquery/internal/criteria"
	"github.com/roach88/docquery/internal/derive"
	"github.com/roach88/docquery/internal/docsql"
	"github.com/roach88/docquery/internal/schema"
)

// method is a compiled derived-query definition.
type method struct {
	name string
	tree derive.PartTree
	sort criteria.Sort
	args int
}

// BuildMethod resolves a declared method against its entity: part and
// ignore-case names are parsed, properties are typed from the entity's
// fields, and every part is checked to classify to an operator the dialect
// can render.
func BuildMethod(e *schema.Entity, m *schema.Method) (derive.PartTree, criteria.Sort, error) {
	tree := make(derive.PartTree, 0, len(m.Where))
	for _, group := range m.Where {
		or := make(derive.OrPart, 0, len(group))
		for _, spec := range group {
			part, err := buildPart(e, spec)
			if err != nil {
				return nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
			}
			or = append(or, part)
		}
		tree = append(tree, or)
	}

	if err := derive.Validate(tree); err != nil {
		return nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
	}
	for _, part := range tree.Parts() {
		kind, _ := derive.KindOf(part.Type)
		if !docsql.Supports(kind) {
			return nil, nil, fmt.Errorf("method %s: part %q: %w",
				m.Name, part.Property, criteria.NewUnsupportedOperator(kind.String()))
		}
	}

	var sort criteria.Sort
	for _, s := range m.Sort {
		if _, ok := e.Field(s.Property); !ok {
			return nil, nil, fmt.Errorf("method %s: sort on unknown property %q", m.Name, s.Property)
		}
		dir, err := criteria.ParseDirection(s.Direction)
		if err != nil {
			return nil, nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		sort = append(sort, criteria.Order{Property: s.Property, Direction: dir})
	}

	return tree, sort, nil
}

func buildPart(e *schema.Entity, spec schema.PartSpec) (derive.Part, error) {
	field, ok := e.Field(spec.Property)
	if !ok {
		return derive.Part{}, fmt.Errorf("unknown property %q", spec.Property)
	}

	typeName := spec.Type
	if typeName == "" {
		typeName = derive.SimpleProperty.String()
	}
	pt, err := derive.ParsePartType(typeName)
	if err != nil {
		return derive.Part{}, fmt.Errorf("property %q: %w", spec.Property, err)
	}

	ic, err := derive.ParseIgnoreCase(spec.IgnoreCase)
	if err != nil {
		return derive.Part{}, fmt.Errorf("property %q: %w", spec.Property, err)
	}

	return derive.Part{
		Property:     field.Name,
		Type:         pt,
		IgnoreCase:   ic,
		PropertyType: field.Type,
	}, nil
}
