package inferschema

import (
	"context"
	"time"
)

// Outcome classifies a decode for observers.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeInvalid Outcome = "invalid" // the payload failed validation
	OutcomeError   Outcome = "error"   // the record could not be resolved
)

// ChangeKind names a catalog mutation.
type ChangeKind string

const (
	ChangeRegister ChangeKind = "register"
	ChangeDelete   ChangeKind = "delete"
	ChangeExternal ChangeKind = "external" // reported by a watched store
)

// DecodeEvent describes one Decode call.
type DecodeEvent struct {
	Record     string
	Outcome    Outcome
	Violations int
	Duration   time.Duration
	Err        error
}

// ChangeEvent describes a change to the set of registered records.
type ChangeEvent struct {
	Record string
	Kind   ChangeKind
}

// Hooks are observability callbacks. Nil fields are skipped.
type Hooks struct {
	OnDecode func(context.Context, *DecodeEvent)
	OnChange func(context.Context, *ChangeEvent)
}

// Merge returns hooks that call h first, then other.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		OnDecode: func(ctx context.Context, e *DecodeEvent) {
			if h.OnDecode != nil {
				h.OnDecode(ctx, e)
			}
			if other.OnDecode != nil {
				other.OnDecode(ctx, e)
			}
		},
		OnChange: func(ctx context.Context, e *ChangeEvent) {
			if h.OnChange != nil {
				h.OnChange(ctx, e)
			}
			if other.OnChange != nil {
				other.OnChange(ctx, e)
			}
		},
	}
}
