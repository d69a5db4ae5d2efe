package mission

import (
	"fmt"
	"net/http"
)

// NotFoundError is returned when no mission exists under the requested ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mission %q not found", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Check that mission %q exists. Use GET /public/api/missions to list missions.", e.ID)
}

// SpecError is returned when a mission creation payload is structurally
// invalid: missing required fields or carrying ill-typed values.
type SpecError struct {
	Field   string
	Message string
}

func (e *SpecError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid mission spec: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid mission spec: %s", e.Message)
}

// StatusCode returns the HTTP status code for this error.
func (e *SpecError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *SpecError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q in the mission payload.", e.Field)
	}
	return "Check the mission payload for required fields: title, target, rule."
}

// UnsupportedComparatorError is returned when a rule names a comparator
// outside the supported set.
type UnsupportedComparatorError struct {
	Operator string
}

func (e *UnsupportedComparatorError) Error() string {
	return fmt.Sprintf("unsupported comparator %q", e.Operator)
}

// StatusCode returns the HTTP status code for this error.
func (e *UnsupportedComparatorError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *UnsupportedComparatorError) Hint() string {
	return "Supported comparators: gt, lt, eq, gte, lte."
}

// TypeMismatchError is returned when a numeric field carries a non-numeric
// value.
type TypeMismatchError struct {
	Field string
	Value interface{}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q requires a numeric value, got %T", e.Field, e.Value)
}

// StatusCode returns the HTTP status code for this error.
func (e *TypeMismatchError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *TypeMismatchError) Hint() string {
	return fmt.Sprintf("Submit a JSON number for %q.", e.Field)
}

// StatusCodeError is an interface for errors that carry an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}
