package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// FromDocument reads an OpenAPI document (JSON or YAML) and converts its
// component schemas into definitions.
func FromDocument(data []byte) ([]schema.Definition, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, fmt.Errorf("openapi document has no component schemas")
	}
	return FromComponents(doc.Components.Schemas)
}

// FromComponents converts object schemas into definitions. The result is
// ordered so each definition follows the ones it references; names that are
// referenced but not present in schemas are left for the caller to resolve.
func FromComponents(schemas openapi3.Schemas) ([]schema.Definition, error) {
	defs := make(map[string]schema.Definition, len(schemas))
	for name, ref := range schemas {
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("schema %s: unresolved reference", name)
		}
		def, err := definitionOf(name, ref.Value)
		if err != nil {
			return nil, err
		}
		defs[name] = def
	}
	return order(defs)
}

func definitionOf(name string, s *openapi3.Schema) (schema.Definition, error) {
	if !s.Type.Is(openapi3.TypeObject) && len(s.Properties) == 0 {
		return schema.Definition{}, fmt.Errorf("schema %s: expected object", name)
	}
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	def := schema.Definition{Name: name, Doc: s.Description}
	for _, field := range fieldOrder(s) {
		prop := s.Properties[field]
		typ, err := typeString(prop)
		if err != nil {
			return schema.Definition{}, fmt.Errorf("schema %s: field %s: %w", name, field, err)
		}
		def.Fields = append(def.Fields, schema.FieldDefinition{
			Name:     field,
			Type:     typ,
			Required: required[field],
			Doc:      docOf(prop),
		})
	}
	return def, def.Check()
}

// fieldOrder honors OrderExtension and appends any remaining properties
// sorted by name.
func fieldOrder(s *openapi3.Schema) []string {
	var names []string
	seen := make(map[string]bool, len(s.Properties))
	for _, n := range extensionStrings(s.Extensions[OrderExtension]) {
		if _, ok := s.Properties[n]; ok && !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range s.Properties {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func extensionStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case json.RawMessage:
		var out []string
		_ = json.Unmarshal(val, &out)
		return out
	}
	return nil
}

func docOf(ref *openapi3.SchemaRef) string {
	// A bare $ref resolves to the component, whose description is not the field's.
	if ref == nil || ref.Ref != "" || ref.Value == nil {
		return ""
	}
	return ref.Value.Description
}

// typeString renders a schema in the type-string grammar.
func typeString(ref *openapi3.SchemaRef) (string, error) {
	if ref == nil {
		return "", fmt.Errorf("missing schema")
	}
	if ref.Ref != "" {
		return refName(ref.Ref)
	}
	s := ref.Value
	if s == nil {
		return "", fmt.Errorf("missing schema")
	}

	if name, ok := s.Extensions[TypeExtension].(string); ok {
		return "", fmt.Errorf("custom type %s cannot be imported", name)
	}
	// allOf with a single member is how references carry nullable or a description.
	if len(s.AllOf) == 1 {
		return typeString(s.AllOf[0])
	}
	if len(s.AllOf) > 1 {
		return "", fmt.Errorf("allOf with %d members is not supported", len(s.AllOf))
	}
	alts := s.AnyOf
	if len(alts) == 0 {
		alts = s.OneOf
	}
	if len(alts) > 0 {
		parts := make([]string, 0, len(alts))
		for _, alt := range alts {
			p, err := typeString(alt)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return strings.Join(parts, " | "), nil
	}

	switch {
	case s.Type.Is(openapi3.TypeString):
		if len(s.Enum) == 0 {
			return "string", nil
		}
		lits := make([]string, 0, len(s.Enum))
		for _, e := range s.Enum {
			v, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("enum value %v is not a string", e)
			}
			lits = append(lits, strconv.Quote(v))
		}
		return strings.Join(lits, " | "), nil
	case s.Type.Is(openapi3.TypeInteger):
		return "int", nil
	case s.Type.Is(openapi3.TypeNumber):
		return "float", nil
	case s.Type.Is(openapi3.TypeBoolean):
		return "bool", nil
	case s.Type.Is(openapi3.TypeArray):
		elem, err := typeString(s.Items)
		if err != nil {
			return "", fmt.Errorf("items: %w", err)
		}
		return "[" + elem + "]", nil
	case s.Type.Is(openapi3.TypeObject):
		if len(s.Properties) > 0 {
			return "", fmt.Errorf("inline object schemas are not supported, move it to components")
		}
		return "any", nil
	case s.Type == nil || len(s.Type.Slice()) == 0:
		return "any", nil
	}
	return "", fmt.Errorf("unsupported schema type %v", s.Type.Slice())
}

func refName(ref string) (string, error) {
	if !strings.HasPrefix(ref, refPrefix) {
		return "", fmt.Errorf("unsupported reference %s", ref)
	}
	return strings.TrimPrefix(ref, refPrefix), nil
}

// order sorts definitions so references come first. Ties break by name.
func order(defs map[string]schema.Definition) ([]schema.Definition, error) {
	deps := make(map[string][]string, len(defs))
	for name, def := range defs {
		for _, f := range def.Fields {
			for _, ident := range identifiers(f.Type) {
				if _, ok := defs[ident]; ok && ident != name {
					deps[name] = append(deps[name], ident)
				}
			}
		}
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(defs))
	out := make([]schema.Definition, 0, len(defs))
	var visit func(string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("schemas reference each other in a cycle through %s", name)
		}
		state[name] = visiting
		d := deps[name]
		sort.Strings(d)
		for _, dep := range d {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, defs[name])
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// identifiers returns the bare names in a type string, skipping quoted literals.
func identifiers(typ string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(typ, func(r rune) bool {
		return r == '|' || r == '[' || r == ']' || r == ' '
	}) {
		if strings.HasPrefix(part, `"`) {
			continue
		}
		switch part {
		case "string", "int", "float", "bool", "any":
			continue
		}
		out = append(out, part)
	}
	return out
}
