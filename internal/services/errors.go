package services

import (
	"errors"
	"strings"

	"posdash/internal/backend"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrBackend            = errors.New("backend error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflict")
)

// Error is returned by every service operation. Prefix is the human-readable
// context shown to users, e.g. "Failed to create category".
type Error struct {
	Kind   error
	Prefix string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e.Prefix == "" {
		return e.Err.Error()
	}
	return e.Prefix + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ValidationError reports a missing or malformed input field.
func ValidationError(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Err: errors.New(message)}
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Field
	}
	return ""
}

// Message returns the text suitable for a flash notification.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func wrap(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	kind := ErrBackend
	switch {
	case errors.Is(err, backend.ErrNoRows):
		kind = ErrNotFound
	case errors.Is(err, backend.ErrConflict), errors.Is(err, backend.ErrReferenced), errors.Is(err, backend.ErrObjectExists):
		kind = ErrConflict
	}
	return &Error{Kind: kind, Prefix: prefix, Err: err}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError(field, strings.ToUpper(field[:1])+field[1:]+" is required")
	}
	return nil
}
