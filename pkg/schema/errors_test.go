package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_String(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{
			&ValidationError{Key: "inputs", Reason: "required"},
			`field "inputs": required`,
		},
		{
			&ValidationError{Key: "parameters.top_k", Reason: "expected int, got string", Value: "many"},
			`field "parameters.top_k": expected int, got string (got string)`,
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestAggregateError_String(t *testing.T) {
	aggr := &AggregateError{Errors: []error{
		&ValidationError{Key: "inputs", Reason: "required"},
		&ValidationError{Key: "parameters.top_k", Reason: "expected int", Value: "many"},
	}}
	if got := aggr.Error(); !strings.Contains(got, "2 validation errors") {
		t.Errorf("Error() = %q, want a count of 2", got)
	}

	single := &AggregateError{Errors: []error{&ValidationError{Key: "inputs", Reason: "required"}}}
	if got := single.Error(); got != `field "inputs": required` {
		t.Errorf("Error() = %q, want the lone failure", got)
	}
}

func TestValidationErrors(t *testing.T) {
	if errs := ValidationErrors(&ValidationError{Key: "inputs", Reason: "required"}); len(errs) != 1 {
		t.Errorf("ValidationErrors(single) = %v, want 1 error", errs)
	}
	if errs := ValidationErrors(errors.New("boom")); errs != nil {
		t.Errorf("ValidationErrors(plain) = %v, want nil", errs)
	}
}

func TestDecodeErrors_Unwrap(t *testing.T) {
	r := MustRecord("R", "",
		RequiredField("inputs", String(), ""),
		OptionalField("top_k", Int(), ""),
	)

	_, err := Decode(r, map[string]any{"inputs": nil, "top_k": "many"})
	if err == nil {
		t.Fatal("Decode() should fail")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("errors.As(%v) should find a *ValidationError", err)
	}

	got := map[string]bool{}
	for _, v := range Violations(err) {
		got[v.Key] = true
	}
	if !got["inputs"] || !got["top_k"] || len(got) != 2 {
		t.Errorf("Violations() keys = %v, want inputs and top_k", got)
	}
}
