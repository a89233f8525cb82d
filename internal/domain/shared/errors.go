package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for propagation and transport mapping
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidTransition   ErrorKind = "INVALID_TRANSITION"
	KindInvalidParameter    ErrorKind = "INVALID_PARAMETER"
	KindConflict            ErrorKind = "CONFLICT"
	KindGenerationExhausted ErrorKind = "GENERATION_EXHAUSTED"
	KindDeliveryFailure     ErrorKind = "DELIVERY_FAILURE"
	KindStorageFailure      ErrorKind = "STORAGE_FAILURE"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindUnavailable         ErrorKind = "UNAVAILABLE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target names the same code, or is the sentinel of this error's kind.
// This lets callers write errors.Is(err, shared.ErrConflict) for any conflict.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return t.Kind != "" && t.Code == string(t.Kind) && t.Kind == e.Kind
}

// NewDomainError creates a new domain error. The code doubles as the kind.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    ErrorKind(code),
	}
}

// NewKindError creates a domain error with a specific code under a broader kind
func NewKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// NotFoundError returns a NOT_FOUND error naming the missing entity
func NotFoundError(entity string) *DomainError {
	return NewKindError(KindNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", entity))
}

// InvalidTransitionError returns an error naming both states of a rejected transition
func InvalidTransitionError(entity string, from, to fmt.Stringer) *DomainError {
	return NewKindError(KindInvalidTransition, "INVALID_TRANSITION",
		fmt.Sprintf("invalid %s status transition: %s -> %s", entity, from, to))
}

// InvalidParameterError returns an INVALID_PARAMETER error with a specific code
func InvalidParameterError(code, message string) *DomainError {
	return NewKindError(KindInvalidParameter, code, message)
}

// ConflictError returns a CONFLICT error with a specific code
func ConflictError(code, message string) *DomainError {
	return NewKindError(KindConflict, code, message)
}

// Kind sentinels. Match with errors.Is.
var (
	ErrNotFound            = NewDomainError(string(KindNotFound), "Resource not found")
	ErrInvalidTransition   = NewDomainError(string(KindInvalidTransition), "Status transition not allowed")
	ErrInvalidParameter    = NewDomainError(string(KindInvalidParameter), "Invalid parameter")
	ErrConflict            = NewDomainError(string(KindConflict), "Resource conflict")
	ErrGenerationExhausted = NewDomainError(string(KindGenerationExhausted), "Could not generate a unique identifier")
	ErrDeliveryFailure     = NewDomainError(string(KindDeliveryFailure), "Notification delivery failed")
	ErrStorageFailure      = NewDomainError(string(KindStorageFailure), "Storage operation failed")
	ErrUnauthorized        = NewDomainError(string(KindUnauthorized), "Not authorized to perform this action")
	ErrUnavailable         = NewDomainError(string(KindUnavailable), "Feature is not available")
)

// KindOf returns the kind of a domain error, or "" for other errors
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
