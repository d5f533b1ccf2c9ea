package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Object is a validated record instance. It distinguishes three states per
// field: absent, present with null, and present with a value.
// Objects are immutable; every accessor returns copies.
type Object struct {
	record *Record
	values map[string]any
	extra  map[string]any
}

// Record returns the record the object was validated against.
func (o *Object) Record() *Record { return o.record }

// Has reports whether the field was present, including as null.
func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// IsNull reports whether the field was present with an explicit null.
func (o *Object) IsNull(name string) bool {
	v, ok := o.values[name]
	return ok && v == nil
}

// Get returns the canonical value of a field and whether it was present.
// Nested records come back as *Object, lists as []any.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	if !ok {
		return nil, false
	}
	return copyCanonical(v), true
}

// Extra returns undeclared keys kept under PreserveUnknown, or nil.
func (o *Object) Extra() map[string]any {
	if len(o.extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(o.extra))
	for k, v := range o.extra {
		out[k] = toWire(v)
	}
	return out
}

// ToWire renders the object as a loosely typed mapping. Absent fields are
// omitted; explicit nulls are emitted as nil.
func (o *Object) ToWire() map[string]any {
	out := make(map[string]any, len(o.values)+len(o.extra))
	for k, v := range o.extra {
		out[k] = toWire(v)
	}
	for k, v := range o.values {
		out[k] = toWire(v)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToWire())
}

// Equal reports whether both objects carry the same record and wire form.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.record == other.record && reflect.DeepEqual(o.ToWire(), other.ToWire())
}

func (o *Object) String() string {
	return fmt.Sprintf("%s%v", o.record.name, o.ToWire())
}

// Lookup reads a field as T. Canonical value types are string, int64,
// float64, bool, []any, *Object and any.
func Lookup[T any](o *Object, name string) (Optional[T], error) {
	if _, declared := o.record.Field(name); !declared {
		return Absent[T](), fmt.Errorf("%s has no field %s", o.record.name, name)
	}
	v, ok := o.Get(name)
	if !ok {
		return Absent[T](), nil
	}
	if v == nil {
		return Null[T](), nil
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return Absent[T](), fmt.Errorf("%s.%s: canonical value is %T, not %T", o.record.name, name, v, zero)
	}
	return Some(typed), nil
}

// copyCanonical copies containers but keeps nested Objects, which are immutable.
func copyCanonical(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyCanonical(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = copyCanonical(e)
		}
		return out
	default:
		return v
	}
}

// toWire converts canonical values into plain JSON-like data.
func toWire(v any) any {
	switch val := v.(type) {
	case *Object:
		return val.ToWire()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toWire(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toWire(e)
		}
		return out
	default:
		return v
	}
}

// cloneWire deep-copies free-form data, enforcing the depth cap.
func cloneWire(v any, st *state) (any, error) {
	switch val := v.(type) {
	case *Object:
		return val.ToWire(), nil
	case map[string]any:
		inner, err := st.descend()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(val))
		for k, e := range val {
			c, err := cloneWire(e, inner.field(k))
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case []any:
		inner, err := st.descend()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(val))
		for i, e := range val {
			c, err := cloneWire(e, inner.index(i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}
