package schema

type presence uint8

const (
	absent presence = iota
	null
	set
)

// Optional is a tri-state field value: absent, explicitly null, or set.
// The zero value is absent.
type Optional[T any] struct {
	value T
	state presence
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, state: set}
}

// Null returns an Optional that is present on the wire as null.
func Null[T any]() Optional[T] {
	return Optional[T]{state: null}
}

// Absent returns an Optional that is omitted from the wire.
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == set
}

// OrElse returns the value if set, otherwise def.
func (o Optional[T]) OrElse(def T) T {
	if o.state == set {
		return o.value
	}
	return def
}

func (o Optional[T]) IsSet() bool    { return o.state == set }
func (o Optional[T]) IsNull() bool   { return o.state == null }
func (o Optional[T]) IsAbsent() bool { return o.state == absent }

// Map converts a set value with fn; absent and null are carried over.
func Map[A, B any](o Optional[A], fn func(A) (B, error)) (Optional[B], error) {
	switch o.state {
	case set:
		b, err := fn(o.value)
		if err != nil {
			return Absent[B](), err
		}
		return Some(b), nil
	case null:
		return Null[B](), nil
	default:
		return Absent[B](), nil
	}
}

// Put writes o into wire under key: set values as-is, null as nil,
// absent not at all.
func Put[T any](wire map[string]any, key string, o Optional[T]) {
	PutFunc(wire, key, o, func(v T) any { return v })
}

// PutFunc is like Put but converts set values with conv first.
func PutFunc[T any](wire map[string]any, key string, o Optional[T], conv func(T) any) {
	switch o.state {
	case set:
		wire[key] = conv(o.value)
	case null:
		wire[key] = nil
	}
}
