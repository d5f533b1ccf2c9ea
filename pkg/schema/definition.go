package schema

import (
	"fmt"
	"regexp"
)

var recordNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Definition is the declarative, serializable form of a Record.
type Definition struct {
	Name   string            `json:"name" yaml:"name" mapstructure:"name"`
	Doc    string            `json:"doc,omitempty" yaml:"doc,omitempty" mapstructure:"doc"`
	Fields []FieldDefinition `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// FieldDefinition declares one field with a type string.
type FieldDefinition struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Doc      string `json:"doc,omitempty" yaml:"doc,omitempty" mapstructure:"doc"`
}

// Check validates the definition's shape without resolving record references.
func (d Definition) Check() error {
	if !recordNamePattern.MatchString(d.Name) {
		return fmt.Errorf("invalid record name %q", d.Name)
	}
	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("record %s: field %d has no name", d.Name, i)
		}
		if seen[f.Name] {
			return fmt.Errorf("record %s: duplicate field %s", d.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Type == "" {
			return fmt.Errorf("record %s: field %s has no type", d.Name, f.Name)
		}
		if _, err := splitUnion(f.Type); err != nil {
			return fmt.Errorf("record %s: field %s: %w", d.Name, f.Name, err)
		}
	}
	return nil
}

// Build turns the definition into a Record, resolving record names through
// resolver. A nil resolver only allows built-in types.
func (d Definition) Build(resolver Resolver) (*Record, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		t, err := ParseTypeWith(f.Type, resolver)
		if err != nil {
			return nil, fmt.Errorf("record %s: field %s: %w", d.Name, f.Name, err)
		}
		fields = append(fields, Field{Name: f.Name, Type: t, Required: f.Required, Doc: f.Doc})
	}
	return NewRecord(d.Name, d.Doc, fields...)
}

// DefinitionOf describes an existing record. Nested records are referenced
// by name, so building the result needs a resolver that knows them.
func DefinitionOf(r *Record) Definition {
	d := Definition{Name: r.name, Doc: r.doc, Fields: make([]FieldDefinition, 0, len(r.fields))}
	for _, f := range r.fields {
		d.Fields = append(d.Fields, FieldDefinition{
			Name:     f.Name,
			Type:     f.Type.Name(),
			Required: f.Required,
			Doc:      f.Doc,
		})
	}
	return d
}

// Dependencies lists the records r references, depth first, each once.
// r itself is not included.
func Dependencies(r *Record) []*Record {
	var out []*Record
	seen := map[*Record]bool{r: true}
	var walk func(t Type)
	walk = func(t Type) {
		switch v := t.(type) {
		case *Record:
			if seen[v] {
				return
			}
			seen[v] = true
			for _, f := range v.fields {
				walk(f.Type)
			}
			out = append(out, v)
		case *SliceType:
			walk(v.elemType)
		case *UnionType:
			for _, alt := range v.alternatives {
				walk(alt)
			}
		}
	}
	for _, f := range r.fields {
		walk(f.Type)
	}
	return out
}
