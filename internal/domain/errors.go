package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingTopicID indicates a generation run was requested without a
	// topic identifier. This is the only fatal precondition of a run.
	ErrMissingTopicID = errors.New("topic id is required")

	// ErrPersistence indicates a content store write failed.
	ErrPersistence = errors.New("persistence failed")

	// ErrTransferFailed indicates the publish handoff to the downstream
	// publishing system failed.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrStorageNotConfigured indicates the object storage collaborator is
	// not configured. Callers degrade by skipping storage operations.
	ErrStorageNotConfigured = errors.New("storage not configured")

	// ErrServiceUnavailable indicates that an external service is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInternalError indicates an internal server error.
	ErrInternalError = errors.New("internal error")
)

// ValidationError represents a validation error for a specific input field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AlreadyExistsError provides details about a duplicate entity.
type AlreadyExistsError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AlreadyExistsError) Unwrap() error {
	return ErrAlreadyExists
}

// PersistenceError is surfaced when a content store write fails. When the
// failed write followed a successful blob upload, Compensated records
// whether the compensating storage delete succeeded; the database error,
// never the rollback error, is what propagates.
type PersistenceError struct {
	ContentType ContentFormat
	Compensated bool
	Err         error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s content: %v", e.ContentType, e.Err)
}

// Unwrap returns the underlying store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the persistence sentinel.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// TransferError consolidates a publish-handoff failure into a single
// human-readable message suitable for a trainer-facing UI.
type TransferError struct {
	CourseID string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("course %s could not be handed off to the publishing system: %v", e.CourseID, e.Err)
}

// Unwrap returns the underlying transfer error.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the transfer sentinel.
func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed
}

// ExternalAPIError provides details about an external collaborator error.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ExternalAPIError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(entity, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Entity: entity, ID: id}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewExternalAPIError creates a new ExternalAPIError.
func NewExternalAPIError(source string, statusCode int, message string, cause error) *ExternalAPIError {
	return &ExternalAPIError{Source: source, StatusCode: statusCode, Message: message, Cause: cause}
}
