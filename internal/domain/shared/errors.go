package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for transport-level mapping.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindLimitExceeded ErrorKind = "limit_exceeded"
	KindInvalidState  ErrorKind = "invalid_state"
	KindInternal      ErrorKind = "internal"
)

// DomainError is the error type returned across the domain and application
// layers. Handlers map its Kind to an HTTP status.
type DomainError struct {
	Kind     ErrorKind
	Resource string
	Message  string
	cause    error
}

func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// NewValidationError reports missing or malformed caller input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports an absent resource (tenant, vehicle, location...).
func NewNotFoundError(resource, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Resource: resource, Message: fmt.Sprintf("%q not found", id)}
}

// NewConflictError reports an interval overlap or duplicate booking.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: message}
}

// NewLimitExceededError reports a tenant over its contract quota.
func NewLimitExceededError(message string) *DomainError {
	return &DomainError{Kind: KindLimitExceeded, Message: message}
}

// NewInvalidStateError reports an illegal aggregate state transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

// NewInternalError wraps a storage or infrastructure failure.
func NewInternalError(cause error) *DomainError {
	return &DomainError{Kind: KindInternal, Message: cause.Error(), cause: cause}
}

// KindOf returns the ErrorKind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
