// Package derrors provides coded domain errors.
//
// Services and models return these instead of raw errors so transport layers
// can translate codes into HTTP statuses without string matching. Validation
// failures never panic or bubble up as opaque errors; they travel as data,
// optionally carrying a per-field message map (see WithFields).
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport translation and branching.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeBadRequest         Code = "bad_request"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Fields maps a field name to its validation messages, mirroring the
// { field: [messages] } error shape used on the wire.
type Fields map[string][]string

// Error is a coded domain error with an optional wrapped cause and optional
// field-scoped validation detail.
type Error struct {
	Code    Code
	Message string
	fields  Fields
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WithFields builds a validation error carrying field-scoped messages.
func WithFields(code Code, message string, fields Fields) error {
	return &Error{Code: code, Message: message, fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is shorthand for HasCode, reading naturally at call sites:
// derrors.Is(err, derrors.CodeNotFound).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts field-scoped messages from err, or nil when err carries none.
func FieldsOf(err error) Fields {
	var de *Error
	for errors.As(err, &de) {
		if len(de.fields) > 0 {
			return de.fields
		}
		if de.cause == nil {
			return nil
		}
		err = de.cause
	}
	return nil
}
