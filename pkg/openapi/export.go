package openapi

import (
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

const (
	refPrefix = "#/components/schemas/"

	// OrderExtension keeps field declaration order, which a JSON object
	// of properties cannot.
	OrderExtension = "x-inferschema-order"

	// TypeExtension names a custom type that has no OpenAPI equivalent.
	TypeExtension = "x-inferschema-type"
)

// Ref returns the component reference for a record name.
func Ref(name string) string {
	return refPrefix + name
}

// TypeSchema maps a field type to a schema. Records are written as a $ref;
// the resolved value is attached so the document validates in memory.
func TypeSchema(t schema.Type) *openapi3.SchemaRef {
	switch v := t.(type) {
	case *schema.Record:
		return openapi3.NewSchemaRef(Ref(v.Name()), RecordSchema(v))
	case *schema.StringType:
		return openapi3.NewStringSchema().NewRef()
	case *schema.IntType:
		return openapi3.NewInt64Schema().NewRef()
	case *schema.FloatType:
		return openapi3.NewFloat64Schema().NewRef()
	case *schema.BoolType:
		return openapi3.NewBoolSchema().NewRef()
	case *schema.AnyType:
		return (&openapi3.Schema{Nullable: true}).NewRef()
	case *schema.SliceType:
		s := openapi3.NewArraySchema()
		s.Items = TypeSchema(v.Elem())
		return s.NewRef()
	case *schema.LiteralType:
		values := make([]any, 0, len(v.Values()))
		for _, lit := range v.Values() {
			values = append(values, lit)
		}
		return openapi3.NewStringSchema().WithEnum(values...).NewRef()
	case *schema.UnionType:
		s := &openapi3.Schema{}
		for _, alt := range v.Alternatives() {
			s.AnyOf = append(s.AnyOf, TypeSchema(alt))
		}
		return s.NewRef()
	default:
		return (&openapi3.Schema{Extensions: map[string]any{TypeExtension: t.Name()}}).NewRef()
	}
}

// RecordSchema describes r as an object schema. Optional fields are nullable.
func RecordSchema(r *schema.Record) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Title = r.Name()
	s.Description = r.Doc()

	order := make([]any, 0, len(r.Fields()))
	for _, f := range r.Fields() {
		prop := TypeSchema(f.Type)
		if !f.Required {
			prop = nullable(prop)
		}
		if f.Doc != "" {
			prop = describe(prop, f.Doc)
		}
		s.Properties[f.Name] = prop
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
		order = append(order, f.Name)
	}
	s.Extensions = map[string]any{OrderExtension: order}
	return s
}

// nullable marks a schema as accepting null. A $ref cannot carry siblings in
// OpenAPI 3.0, so references are wrapped in allOf.
func nullable(ref *openapi3.SchemaRef) *openapi3.SchemaRef {
	if ref.Ref != "" {
		return (&openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}, Nullable: true}).NewRef()
	}
	ref.Value.Nullable = true
	return ref
}

func describe(ref *openapi3.SchemaRef, doc string) *openapi3.SchemaRef {
	if ref.Ref != "" {
		ref = (&openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}).NewRef()
	}
	ref.Value.Description = doc
	return ref
}

// Components collects schemas for records and every record they reference.
func Components(records ...*schema.Record) openapi3.Schemas {
	out := make(openapi3.Schemas)
	for _, r := range records {
		out[r.Name()] = RecordSchema(r).NewRef()
		for _, dep := range schema.Dependencies(r) {
			if _, ok := out[dep.Name()]; !ok {
				out[dep.Name()] = RecordSchema(dep).NewRef()
			}
		}
	}
	return out
}

// Document wraps the component schemas of records in an OpenAPI document.
func Document(title, version string, records ...*schema.Record) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: Components(records...),
		},
	}
}
