package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
)

// Field is a single declared member of a Record.
type Field struct {
	Name     string
	Type     Type
	Required bool
	Doc      string
}

// RequiredField declares a field that must be present and non-null.
func RequiredField(name string, t Type, doc string) Field {
	return Field{Name: name, Type: t, Required: true, Doc: doc}
}

// OptionalField declares a field that may be absent or null.
func OptionalField(name string, t Type, doc string) Field {
	return Field{Name: name, Type: t, Doc: doc}
}

// Record is a named, ordered set of fields. It is itself a Type, so records
// nest inside other records, slices and unions.
// A Record is immutable after NewRecord returns.
type Record struct {
	name   string
	doc    string
	fields []Field
	index  map[string]int
}

// NewRecord builds a record. Field names must be unique and non-empty.
func NewRecord(name, doc string, fields ...Field) (*Record, error) {
	if name == "" {
		return nil, fmt.Errorf("record name is empty")
	}
	r := &Record{
		name:   name,
		doc:    doc,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("record %s: field name is empty", name)
		}
		if f.Type == nil {
			return nil, fmt.Errorf("record %s: field %s: type is nil", name, f.Name)
		}
		if _, dup := r.index[f.Name]; dup {
			return nil, fmt.Errorf("record %s: duplicate field %s", name, f.Name)
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// MustRecord is like NewRecord but panics on error. It is meant for
// package-level record declarations.
func MustRecord(name, doc string, fields ...Field) *Record {
	r, err := NewRecord(name, doc, fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the record name, which is also its type string.
func (r *Record) Name() string { return r.name }

// Doc returns the record documentation.
func (r *Record) Doc() string { return r.doc }

// Fields returns the declared fields in order.
func (r *Record) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Field looks up a declared field by name.
func (r *Record) Field(name string) (Field, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Validate checks that value is a wire object accepted by the record.
func (r *Record) Validate(value any) error { return validateWith(r, value) }

// Construct builds an Object from explicit field values. Required fields
// must be supplied; omitted optional fields are absent. Unlike Decode,
// names the record does not declare are rejected.
func (r *Record) Construct(values map[string]any) (*Object, error) {
	o := defaultOptions()
	o.unknown = RejectUnknown
	out, err := r.decode(values, newState(o))
	if err != nil {
		return nil, err
	}
	return out.(*Object), nil
}

func (r *Record) decode(value any, st *state) (any, error) {
	m, err := asWireMap(value)
	if err != nil {
		return nil, err
	}
	inner, err := st.descend()
	if err != nil {
		return nil, err
	}

	var errs []error
	values := make(map[string]any, len(r.fields))

	for _, f := range r.fields {
		fs := inner.field(f.Name)
		raw, exists := m[f.Name]
		if !exists {
			if f.Required {
				errs = append(errs, &ValidationError{Key: fs.path, Reason: "required"})
			}
			continue
		}
		if raw == nil {
			if f.Required {
				errs = append(errs, &ValidationError{Key: fs.path, Reason: fmt.Sprintf("required, expected %s, got null", f.Type.Name())})
				continue
			}
			values[f.Name] = nil
			continue
		}
		decoded, err := decodeValue(f.Type, raw, fs)
		if err != nil {
			errs = collect(errs, err, fs.path, raw)
			continue
		}
		values[f.Name] = decoded
	}

	var extra map[string]any
	for _, key := range sortedKeys(m) {
		if _, declared := r.index[key]; declared {
			continue
		}
		switch st.opts.unknown {
		case RejectUnknown:
			errs = append(errs, &ValidationError{
				Key:    inner.field(key).path,
				Reason: fmt.Sprintf("not declared by %s", r.name),
				Value:  m[key],
			})
		case PreserveUnknown:
			v, err := cloneWire(m[key], inner.field(key))
			if err != nil {
				errs = collect(errs, err, inner.field(key).path, m[key])
				continue
			}
			if extra == nil {
				extra = make(map[string]any)
			}
			extra[key] = v
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return &Object{record: r, values: values, extra: extra}, nil
}

// Decode validates a wire mapping against r and returns the resulting Object.
// Decoding is atomic: on failure no Object is returned.
func Decode(r *Record, wire map[string]any, opts ...Option) (*Object, error) {
	out, err := r.decode(wire, newState(buildOptions(opts)))
	if err != nil {
		return nil, err
	}
	return out.(*Object), nil
}

// DecodeJSON parses data as a JSON object and decodes it against r.
// Numbers are read exactly, so large integers survive.
func DecodeJSON(r *Record, data []byte, opts ...Option) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.name, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: unexpected data after top-level value", r.name)
	}
	wire, ok := raw.(map[string]any)
	if !ok {
		return nil, &AggregateError{Errors: []error{&ValidationError{
			Key:    "$",
			Reason: fmt.Sprintf("expected object, got %s", describe(raw)),
		}}}
	}
	return Decode(r, wire, opts...)
}

func asWireMap(value any) (map[string]any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case *Object:
		return v.ToWire(), nil
	case nil:
		return nil, fmt.Errorf("expected object, got null")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("expected object, got %s", describe(value))
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
