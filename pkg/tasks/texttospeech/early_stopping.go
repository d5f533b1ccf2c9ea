package texttospeech

import (
	"encoding/json"
	"fmt"
)

type earlyStoppingKind uint8

const (
	earlyStoppingUnset earlyStoppingKind = iota
	earlyStoppingBool
	earlyStoppingEnum
)

// EarlyStopping is either a bool or an EarlyStoppingEnum. Wire values are
// matched in that order. The zero value holds neither and fails validation.
type EarlyStopping struct {
	kind earlyStoppingKind
	b    bool
	enum EarlyStoppingEnum
}

// EarlyStoppingBool returns the bool variant.
func EarlyStoppingBool(b bool) EarlyStopping {
	return EarlyStopping{kind: earlyStoppingBool, b: b}
}

// EarlyStoppingValue returns the enum variant.
func EarlyStoppingValue(e EarlyStoppingEnum) EarlyStopping {
	return EarlyStopping{kind: earlyStoppingEnum, enum: e}
}

// ParseEarlyStopping matches a wire value against the union.
func ParseEarlyStopping(v any) (EarlyStopping, error) {
	idx, canonical, err := earlyStoppingType.Match(v)
	if err != nil {
		return EarlyStopping{}, err
	}
	switch idx {
	case 0:
		return EarlyStoppingBool(canonical.(bool)), nil
	default:
		return EarlyStoppingValue(EarlyStoppingEnum(canonical.(string))), nil
	}
}

// Bool returns the bool variant, if that is the one held.
func (e EarlyStopping) Bool() (bool, bool) {
	return e.b, e.kind == earlyStoppingBool
}

// Enum returns the enum variant, if that is the one held.
func (e EarlyStopping) Enum() (EarlyStoppingEnum, bool) {
	return e.enum, e.kind == earlyStoppingEnum
}

// Wire returns the loosely typed form. An unset value has no wire form and
// is returned as is, which no alternative of the union accepts.
func (e EarlyStopping) Wire() any {
	switch e.kind {
	case earlyStoppingBool:
		return e.b
	case earlyStoppingEnum:
		return string(e.enum)
	}
	return e
}

func (e EarlyStopping) String() string {
	switch e.kind {
	case earlyStoppingBool:
		return fmt.Sprint(e.b)
	case earlyStoppingEnum:
		return string(e.enum)
	}
	return "<unset>"
}

// MarshalJSON implements json.Marshaler.
func (e EarlyStopping) MarshalJSON() ([]byte, error) {
	if e.kind == earlyStoppingUnset {
		return nil, fmt.Errorf("early_stopping: value is unset")
	}
	return json.Marshal(e.Wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *EarlyStopping) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseEarlyStopping(raw)
	if err != nil {
		return fmt.Errorf("early_stopping: %w", err)
	}
	*e = parsed
	return nil
}
