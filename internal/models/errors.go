package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("only the owner can modify this record")
	ErrUnauthorized = errors.New("no active session")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("record is still referenced")
)

// FieldError reports a single invalid form field. It matches ErrValidation
// under errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func required(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

func invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
