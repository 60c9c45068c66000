// file: internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Error type identifiers
const (
	TypeValidation   = "VALIDATION_ERROR"
	TypeConflict     = "CONFLICT"
	TypeUnauthorized = "UNAUTHORIZED"
	TypeForbidden    = "FORBIDDEN"
	TypeNotFound     = "NOT_FOUND"
	TypeInvalidState = "INVALID_STATE"
	TypeBusiness     = "BUSINESS_ERROR"
	TypeInternal     = "INTERNAL_ERROR"
)

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       TypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewInvalidStateError creates an error for a transition the current state
// does not permit
func NewInvalidStateError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       TypeInvalidState,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewBusinessError creates a business logic error
func NewBusinessError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       TypeBusiness,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// Well-known business error codes
const (
	CodeCapacityExceeded   = "CAPACITY_EXCEEDED"
	CodeDuplicateAward     = "DUPLICATE_AWARD"
	CodeAlreadyRegistered  = "ALREADY_REGISTERED"
	CodeAlreadyRated       = "ALREADY_RATED"
	CodePendingApplication = "PENDING_APPLICATION"
	CodeCooldownActive     = "REAPPLICATION_COOLDOWN"
	CodeNotVerified        = "COMMUNITY_NOT_VERIFIED"
)

// NewCapacityExceededError reports a full event.
func NewCapacityExceededError(eventID int64) *ServiceError {
	return &ServiceError{
		Type:       TypeConflict,
		Message:    "event has reached its participant capacity",
		Code:       CodeCapacityExceeded,
		Details:    map[string]interface{}{"event_id": eventID},
		StatusCode: http.StatusConflict,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error, or wraps it as a
// generic internal one
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return IsErrorType(err, TypeNotFound) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return IsErrorType(err, TypeValidation) }

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool { return IsErrorType(err, TypeConflict) }

// IsInvalidStateError checks if an error is an invalid state error
func IsInvalidStateError(err error) bool { return IsErrorType(err, TypeInvalidState) }

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool { return IsErrorType(err, TypeUnauthorized) }

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool { return IsErrorType(err, TypeForbidden) }

// HasErrorCode reports whether err carries the given machine-readable code.
func HasErrorCode(err error, code string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code == code
	}
	return false
}

// WithDetails attaches structured detail fields to an error.
func (e *ServiceError) WithDetails(details map[string]interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).WithDetails(map[string]interface{}{
		"resource": entityType,
		"id":       id,
	})
}
