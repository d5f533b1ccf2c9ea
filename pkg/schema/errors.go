package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Key    string // Field path, e.g. "parameters.generate.top_k"
	Reason string // Human-readable expectation
	Value  any    // The value that failed validation

	depth bool
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors carried by err.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return []error{single}
	}
	return nil
}

// Violations flattens err into its field-level failures.
func Violations(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range ValidationErrors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}

// isStructured reports whether err already names its own field paths.
func isStructured(err error) bool {
	var aggr *AggregateError
	var ve *ValidationError
	return errors.As(err, &aggr) || errors.As(err, &ve)
}

func isDepthError(err error) bool {
	for _, e := range ValidationErrors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) && ve.depth {
			return true
		}
	}
	return false
}

// collect appends err to errs, attributing unstructured errors to key.
func collect(errs []error, err error, key string, value any) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return append(errs, aggr.Errors...)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return append(errs, ve)
	}
	return append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
}
