package core

import (
	"errors"
	"fmt"
)

// Error kinds surfaced across the ledger. Typed errors below wrap these
// sentinels so callers can match with errors.Is while still getting a
// specific, actionable message.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate entity")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrPersistence   = errors.New("persistence failure")
)

// ValidationError reports which input rule failed. It is always detected
// before any write begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for constructing a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing customer, farmer, fish category or
// transaction id.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateError reports a name+phone collision on entity create.
type DuplicateError struct {
	Entity string
	Name   string
	Phone  string
}

func (e *DuplicateError) Error() string {
	if e.Phone == "" {
		return fmt.Sprintf("%s %q already exists", e.Entity, e.Name)
	}
	return fmt.Sprintf("%s %q with phone %s already exists", e.Entity, e.Name, e.Phone)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }
