// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")

	// Persistence errors
	ErrPersistence = errors.New("persistence error")
	ErrNoSnapshot  = errors.New("no snapshot stored")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "record", "roster", "labels"
	Op      string // Operation that failed, e.g., "Enroll", "LogPayment"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Record domain errors
var (
	ErrRecordNotFound  = NewDomainError("record", "Find", ErrNotFound, "student record not found")
	ErrDuplicateID     = NewDomainError("record", "Enroll", ErrAlreadyExists, "student ID already enrolled")
	ErrMissingID       = NewDomainError("record", "Validate", ErrInvalidID, "student ID cannot be empty")
	ErrMissingName     = NewDomainError("record", "Validate", ErrEmptyValue, "student name cannot be empty")
	ErrInvalidStatus   = NewDomainError("record", "Validate", ErrInvalidInput, "invalid attendance status")
	ErrInvalidDate     = NewDomainError("record", "Validate", ErrInvalidFormat, "date must be YYYY-MM-DD")
	ErrInvalidAmount   = NewDomainError("record", "LogPayment", ErrValueOutOfRange, "payment amount must be positive")
	ErrNegativeFees    = NewDomainError("record", "Validate", ErrNegativeValue, "fee amounts cannot be negative")
	ErrNegativeBacklog = NewDomainError("record", "Validate", ErrNegativeValue, "backlog count cannot be negative")
)

// Roster domain errors
var (
	ErrInvalidSortField = NewDomainError("roster", "Sort", ErrInvalidInput, "unknown sort field")
	ErrEmptyRoster      = NewDomainError("roster", "Analyze", ErrInvalidInput, "roster is empty")
)

// Label vocabulary errors
var (
	ErrLabelExists   = NewDomainError("labels", "Add", ErrAlreadyExists, "label already exists")
	ErrLabelEmpty    = NewDomainError("labels", "Add", ErrEmptyValue, "label cannot be empty")
	ErrLabelNotFound = NewDomainError("labels", "Remove", ErrNotFound, "label not found")
)

// Generative AI collaborator errors
var (
	ErrInsightUnavailable = NewDomainError("genai", "Summarize", ErrExternalService, "insight generation failed")
	ErrAvatarUnavailable  = NewDomainError("genai", "RenderAvatar", ErrExternalService, "avatar generation failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrAlreadyExists)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsPersistence checks if the error came from the storage layer.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
