package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a dangling reference to a partner, product, account, tax or document.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates bad input shape or range.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadySettled indicates the bill already carries its settling payment.
	ErrAlreadySettled = errors.New("bill already settled")
	// ErrInvalidAccount indicates the settlement account is missing or not an asset account.
	ErrInvalidAccount = errors.New("settlement account must be an Assets account")
	// ErrInvalidStatus indicates a document is in the wrong state for the operation.
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrDuplicateNumber indicates a concurrent writer took the same document number.
	ErrDuplicateNumber = errors.New("document number already taken")
	// ErrContention indicates a lock wait or serialization failure; the request may be retried.
	ErrContention = errors.New("concurrent update, retry the request")
	// ErrDataIntegrity indicates stored data no longer matches its expected shape.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// ValidationError names the offending line and field. Line is -1 for header fields.
type ValidationError struct {
	Line   int
	Field  string
	Reason string
}

// NewValidationError builds a header-level validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Line: -1, Field: field, Reason: reason}
}

// NewLineError builds a validation error for the line at index.
func NewLineError(index int, field, reason string) *ValidationError {
	return &ValidationError{Line: index, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("line %d: %s %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError carries the entity kind and key that failed to resolve.
type NotFoundError struct {
	Kind string
	Key  string
}

// NotFound builds a NotFoundError for the given entity kind and key.
func NotFound(kind string, key any) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: fmt.Sprint(key)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
