package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the type string of the type (e.g., "string", "[int]", "bool | \"never\"").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// decoder is implemented by the built-in types. decode validates value and
// returns its canonical wire form.
type decoder interface {
	decode(value any, st *state) (any, error)
}

// decodeValue runs t against value. Types outside this package only
// validate, so their values are passed through as copies.
func decodeValue(t Type, value any, st *state) (any, error) {
	if d, ok := t.(decoder); ok {
		return d.decode(value, st)
	}
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return cloneWire(value, st)
}

// validateWith decodes value with default options and discards the result.
func validateWith(d decoder, value any) error {
	_, err := d.decode(value, newState(defaultOptions()))
	return err
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error { return validateWith(t, value) }

func (t *StringType) decode(value any, _ *state) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %s", describe(value))
	}
	return s, nil
}

// IntType validates integer values. Canonical form is int64.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error { return validateWith(t, value) }

func (t *IntType) decode(value any, _ *state) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("expected int, got out of range uint")
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("expected int, got out of range uint64")
		}
		return int64(v), nil
	case float32:
		return wholeFloat(float64(v))
	case float64:
		// JSON numbers decode as float64
		return wholeFloat(v)
	case json.Number:
		i, err := v.Int64()
		if err == nil {
			return i, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("expected int, got %s (out of int64 range)", v.String())
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected int, got malformed number %q", v.String())
		}
		return wholeFloat(f)
	default:
		return nil, fmt.Errorf("expected int, got %s", describe(value))
	}
}

func wholeFloat(f float64) (any, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, fmt.Errorf("expected int, got %g (out of int64 range)", f)
	}
	return int64(f), nil
}

// FloatType validates floating-point values. Integers are accepted and widened.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error { return validateWith(t, value) }

func (t *FloatType) decode(value any, _ *state) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(v).Convert(reflect.TypeOf(float64(0))).Float(), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected float, got malformed number %q", v.String())
		}
		return f, nil
	default:
		return nil, fmt.Errorf("expected float, got %s", describe(value))
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error { return validateWith(t, value) }

func (t *BoolType) decode(value any, _ *state) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %s", describe(value))
	}
	return b, nil
}

// AnyType accepts every value, including null.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(value any) error { return validateWith(t, value) }

func (t *AnyType) decode(value any, st *state) (any, error) {
	return cloneWire(value, st)
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

func (t *SliceType) Validate(value any) error { return validateWith(t, value) }

func (t *SliceType) decode(value any, st *state) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("expected slice, got null")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected slice, got %s", describe(value))
	}
	inner, err := st.descend()
	if err != nil {
		return nil, err
	}

	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := decodeValue(t.elemType, rv.Index(i).Interface(), inner.index(i))
		if err != nil {
			if isStructured(err) {
				return nil, err
			}
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = elem
	}
	return out, nil
}

// LiteralType restricts a value to a fixed set of strings (a literal enum).
type LiteralType struct {
	values []string
}

func (t *LiteralType) Name() string {
	quoted := make([]string, len(t.values))
	for i, v := range t.values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, " | ")
}

// Values returns the allowed literal values in declaration order.
func (t *LiteralType) Values() []string {
	return append([]string(nil), t.values...)
}

func (t *LiteralType) Validate(value any) error { return validateWith(t, value) }

func (t *LiteralType) decode(value any, _ *state) (any, error) {
	s, ok := value.(string)
	if ok {
		for _, v := range t.values {
			if s == v {
				return v, nil
			}
		}
	}
	return nil, fmt.Errorf("expected one of {%s}, got %s", strings.Join(t.values, ", "), describe(value))
}

// UnionType accepts a value matching any of its alternatives. Alternatives
// are tried in declaration order and the first match wins.
type UnionType struct {
	alternatives []Type
}

func (t *UnionType) Name() string {
	names := make([]string, len(t.alternatives))
	for i, alt := range t.alternatives {
		names[i] = alt.Name()
	}
	return strings.Join(names, " | ")
}

// Alternatives returns the alternatives in match order.
func (t *UnionType) Alternatives() []Type {
	return append([]Type(nil), t.alternatives...)
}

func (t *UnionType) Validate(value any) error { return validateWith(t, value) }

func (t *UnionType) decode(value any, st *state) (any, error) {
	_, out, err := t.match(value, st)
	return out, err
}

// Match reports which alternative accepts value, along with its canonical form.
func (t *UnionType) Match(value any) (int, any, error) {
	return t.match(value, newState(defaultOptions()))
}

func (t *UnionType) match(value any, st *state) (int, any, error) {
	for i, alt := range t.alternatives {
		out, err := decodeValue(alt, value, st)
		if err == nil {
			return i, out, nil
		}
		if isDepthError(err) {
			return -1, nil, err
		}
	}
	return -1, nil, fmt.Errorf("expected %s, got %s", t.Name(), describe(value))
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Any creates a type that accepts every value.
func Any() Type { return &AnyType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Literal creates a literal enum accepting exactly the given strings.
func Literal(values ...string) Type {
	return &LiteralType{values: append([]string(nil), values...)}
}

// Union creates a union type. Order matters: the first matching alternative wins.
func Union(alternatives ...Type) Type {
	return &UnionType{alternatives: append([]Type(nil), alternatives...)}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// describe renders the wire-level kind of a value for error messages.
func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float32, float64:
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]any, *Object:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", value)
}
