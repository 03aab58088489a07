package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can map it to a response without
// string matching.
type Kind int

const (
	Unknown Kind = iota
	Validation
	Authorization
	NotFound
	InsufficientStock
	Dependency
)

// Error is the error type surfaced by the catalog, ledger and notification
// services. Field is set for validation errors that point at a single input.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// ValidationField builds a validation error attributed to one input field.
func ValidationField(field, msg string) *Error {
	return &Error{Kind: Validation, Field: field, Msg: msg}
}

// KindOf extracts the Kind from err, or Unknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
