// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrNotConnected     = errors.New("collector not connected")
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrMalformedIntent  = errors.New("malformed intent")
	ErrInvalidLab       = errors.New("invalid lab definition")
)

// ValidationError represents one or more validation failures.
// Kind optionally narrows the failure to a category sentinel
// (ErrMalformedIntent, ErrInvalidLab); errors.Is matches both Kind and
// ErrValidationFailed.
type ValidationError struct {
	Errors []string
	Kind   error
}

func (e *ValidationError) Error() string {
	label := "validation failed"
	if e.Kind != nil {
		label = e.Kind.Error()
	}
	if len(e.Errors) == 1 {
		return label + ": " + e.Errors[0]
	}
	return fmt.Sprintf("%s:\n  - %s", label, strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrValidationFailed}
	}
	return []error{ErrValidationFailed, e.Kind}
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// Merge folds the messages of a nested validation error into the builder,
// each prefixed with prefix. Non-validation errors are added as one message.
func (v *ValidationBuilder) Merge(prefix string, err error) *ValidationBuilder {
	if err == nil {
		return v
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, msg := range ve.Errors {
			v.errors = append(v.errors, prefix+msg)
		}
		return v
	}
	v.errors = append(v.errors, prefix+err.Error())
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	return v.BuildAs(nil)
}

// BuildAs is Build with a category sentinel attached to the result.
func (v *ValidationBuilder) BuildAs(kind error) error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors, Kind: kind}
}
