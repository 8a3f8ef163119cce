package errors

import (
	"errors"
	"fmt"
	"time"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]any{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]any{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value any, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]any{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout any) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]any{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]any{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// NewInvalidIntervalError reports an interval whose end precedes its start.
func NewInvalidIntervalError(intervalID int64, start, end time.Time) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInterval,
		Message: fmt.Sprintf("interval %d ends before it starts (%s < %s)", intervalID, end.Format(time.RFC3339), start.Format(time.RFC3339)),
		Code:    "INVALID_INTERVAL",
		Context: map[string]any{
			"interval_id": intervalID,
			"start":       start,
			"end":         end,
		},
	}
}

// NewInvalidRangeError reports an empty, inverted or non-contiguous range.
func NewInvalidRangeError(start, end time.Time, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidRange,
		Message: fmt.Sprintf("invalid range %s to %s: %s", start.Format(time.RFC3339), end.Format(time.RFC3339), reason),
		Code:    "INVALID_RANGE",
		Context: map[string]any{
			"start":  start,
			"end":    end,
			"reason": reason,
		},
	}
}

// NewScopeViolationError reports data that escaped its tenant scope. It is a
// programming error, never a user condition.
func NewScopeViolationError(subject string, detail string) *AppError {
	return &AppError{
		Type:    ErrorTypeScopeViolation,
		Message: fmt.Sprintf("tenant scope violation for %s: %s", subject, detail),
		Code:    "SCOPE_VIOLATION",
		Context: map[string]any{
			"subject": subject,
			"detail":  detail,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]any),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypePermission, ErrorTypeInvalidInterval, ErrorTypeInvalidRange:
			return appErr.Message
		case ErrorTypeDatabase:
			return "A database error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		case ErrorTypeScopeViolation:
			return "An internal error occurred while building the report."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypeInvalidInterval, ErrorTypeInvalidRange:
			return false // user errors
		default:
			return true
		}
	}
	return true
}
