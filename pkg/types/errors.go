package types

import (
	"errors"
	"fmt"
)

// Field and schema errors.
var (
	ErrValidation      = errors.New("field validation failed")
	ErrNotNullField    = errors.New("field is not nullable")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidSchema   = errors.New("invalid schema")
	ErrDuplicateEntity = errors.New("entity type already defined")
	ErrSchemaMismatch  = errors.New("row does not match schema columns")
)

// Table and engine errors.
var (
	ErrTableExists    = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table not found")
	ErrMethodUsage    = errors.New("method used with unsupported arguments")
	ErrCursorConsumed = errors.New("row sequence already consumed")
)

// Connection errors.
var (
	ErrConnectionClosed = errors.New("connection closed")
)

// FieldError reports a failure tied to one named field. It unwraps to one of
// the sentinels above (ErrValidation, ErrNotNullField, ErrUnknownField).
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %q: %v: %s", e.Field, e.Err, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError returns a *FieldError wrapping err.
func NewFieldError(field string, err error, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Err: err}
}
