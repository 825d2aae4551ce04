package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeUnauthorized    ErrorType = "unauthorized"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeOwnershipChange ErrorType = "ownership_change"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeInternal        ErrorType = "internal"
)

// ErrorCode is the stable machine-readable token sent to API clients.
type ErrorCode string

const (
	// Authentication errors (HTTP 401)
	CodeMissingToken ErrorCode = "MISSING_TOKEN"
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Authorization errors (HTTP 403)
	CodeForbidden                ErrorCode = "FORBIDDEN"
	CodeOwnershipChangeForbidden ErrorCode = "OWNERSHIP_CHANGE_FORBIDDEN"

	// Resource errors (HTTP 404)
	CodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	CodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// Validation errors (HTTP 422)
	CodeValidationError ErrorCode = "VALIDATION_ERROR"

	// Server errors (HTTP 500)
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a structured error raised by the business layer.
// Services return these; they never format responses themselves.
type DomainError struct {
	Type    ErrorType
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same type and code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Domain error variables. Compare with errors.Is; wrap with the constructors below.

var (
	ErrMissingToken = NewDomainError(ErrorTypeUnauthorized, CodeMissingToken, "Authentication required. Please sign in.", nil)

	ErrForbidden       = NewDomainError(ErrorTypeForbidden, CodeForbidden, "You do not have permission to access this resource.", nil)
	ErrOwnershipChange = NewDomainError(ErrorTypeOwnershipChange, CodeOwnershipChangeForbidden, "Task ownership cannot be changed.", nil)

	ErrTaskNotFound     = NewDomainError(ErrorTypeNotFound, CodeTaskNotFound, "Task not found.", nil)
	ErrResourceNotFound = NewDomainError(ErrorTypeNotFound, CodeResourceNotFound, "Resource not found.", nil)

	ErrInternal = NewDomainError(ErrorTypeInternal, CodeInternalError, "An internal error occurred", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden or ownership-change error
func IsForbiddenError(err error) bool {
	t := GetErrorType(err)
	return t == ErrorTypeForbidden || t == ErrorTypeOwnershipChange
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// TaskNotFound wraps cause as a task-not-found error
func TaskNotFound(cause error) error {
	return NewDomainError(ErrorTypeNotFound, CodeTaskNotFound, ErrTaskNotFound.Message, cause)
}

// Forbidden wraps cause as an authorization failure
func Forbidden(cause error) error {
	return NewDomainError(ErrorTypeForbidden, CodeForbidden, ErrForbidden.Message, cause)
}

// OwnershipChange reports an attempt to reassign a task to another owner
func OwnershipChange(owner, requested string) error {
	return NewDomainError(ErrorTypeOwnershipChange, CodeOwnershipChangeForbidden, ErrOwnershipChange.Message,
		fmt.Errorf("owner %q cannot be replaced by %q", owner, requested))
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, CodeInternalError, message, err)
}
