package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of an entity property.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeList   FieldType = "list"
	TypeObject FieldType = "object"
)

// ParseFieldType validates a declared type name.
func ParseFieldType(s string) (FieldType, error) {
	switch ft := FieldType(strings.ToLower(strings.TrimSpace(s))); ft {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeList, TypeObject:
		return ft, nil
	default:
		return "", fmt.Errorf("unknown field type %q", s)
	}
}

// Textual reports whether values of this type can be case-folded.
func (t FieldType) Textual() bool {
	return t == TypeString
}

// Field is one declared entity property.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Entity describes a document type stored in one container.
type Entity struct {
	Name      string   `json:"name"`
	Container string   `json:"container"`
	IDField   string   `json:"id_field"`
	Fields    []Field  `json:"fields"`
	Methods   []Method `json:"methods,omitempty"`
}

// Field looks up a property by path. A dotted path resolves when its first
// segment is a declared object field; the nested property has no declared
// type and is returned with an empty Type.
func (e *Entity) Field(path string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == path {
			return f, true
		}
	}
	head, _, nested := strings.Cut(path, ".")
	if !nested {
		return Field{}, false
	}
	for _, f := range e.Fields {
		if f.Name == head && f.Type == TypeObject {
			return Field{Name: path}, true
		}
	}
	return Field{}, false
}

// FieldNames returns declared property names in declaration order.
func (e *Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// Method looks up a derived query method by name.
func (e *Entity) Method(name string) (*Method, bool) {
	for i := range e.Methods {
		if e.Methods[i].Name == name {
			return &e.Methods[i], true
		}
	}
	return nil, false
}

// Method is a derived query: an OR of AND-groups of predicate parts.
type Method struct {
	Name  string       `json:"name"`
	Where [][]PartSpec `json:"where"`
	Sort  []SortSpec   `json:"sort,omitempty"`
}

// PartSpec is one declared predicate fragment.
// Type and IgnoreCase hold the upper-case names used by the derive package.
type PartSpec struct {
	Property   string `json:"property"`
	Type       string `json:"type"`
	IgnoreCase string `json:"ignore_case,omitempty"`
}

// SortSpec is one declared sort key.
type SortSpec struct {
	Property  string `json:"property"`
	Direction string `json:"direction,omitempty"`
}
