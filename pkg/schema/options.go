package schema

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds nesting of records, slices and free-form values.
const DefaultMaxDepth = 32

// UnknownFieldPolicy decides what happens to wire keys a record does not declare.
type UnknownFieldPolicy int

const (
	// DropUnknown silently discards undeclared keys. This is the default, so
	// that fields added by the remote service do not break decoding.
	DropUnknown UnknownFieldPolicy = iota
	// RejectUnknown fails decoding when an undeclared key is present.
	RejectUnknown
	// PreserveUnknown keeps undeclared keys and re-emits them from ToWire.
	PreserveUnknown
)

func (p UnknownFieldPolicy) String() string {
	switch p {
	case DropUnknown:
		return "drop"
	case RejectUnknown:
		return "reject"
	case PreserveUnknown:
		return "preserve"
	default:
		return fmt.Sprintf("UnknownFieldPolicy(%d)", int(p))
	}
}

// ParseUnknownFieldPolicy parses "drop", "reject" (or "strict") and "preserve".
func ParseUnknownFieldPolicy(s string) (UnknownFieldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop", "ignore":
		return DropUnknown, nil
	case "reject", "strict":
		return RejectUnknown, nil
	case "preserve", "keep":
		return PreserveUnknown, nil
	default:
		return DropUnknown, fmt.Errorf("unknown field policy %q (want drop, reject or preserve)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p UnknownFieldPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *UnknownFieldPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseUnknownFieldPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type options struct {
	unknown  UnknownFieldPolicy
	maxDepth int
}

func defaultOptions() options {
	return options{unknown: DropUnknown, maxDepth: DefaultMaxDepth}
}

// Option configures a decode call.
type Option func(*options)

// WithUnknownFields sets the policy for undeclared wire keys.
func WithUnknownFields(p UnknownFieldPolicy) Option {
	return func(o *options) {
		o.unknown = p
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// state is the per-call decode context. It is copied, never shared.
type state struct {
	opts  options
	depth int
	path  string
}

func newState(o options) *state {
	return &state{opts: o}
}

func (s *state) field(name string) *state {
	c := *s
	if s.path == "" {
		c.path = name
	} else {
		c.path = s.path + "." + name
	}
	return &c
}

func (s *state) index(i int) *state {
	c := *s
	c.path = fmt.Sprintf("%s[%d]", s.path, i)
	return &c
}

// descend enters one nesting level.
func (s *state) descend() (*state, error) {
	if s.depth >= s.opts.maxDepth {
		return nil, &ValidationError{
			Key:    s.path,
			Reason: fmt.Sprintf("maximum nesting depth %d exceeded", s.opts.maxDepth),
			depth:  true,
		}
	}
	c := *s
	c.depth++
	return &c, nil
}
