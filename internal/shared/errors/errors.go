package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeIncompatibleAccounts = "INCOMPATIBLE_ACCOUNTS"
	ErrCodePeriodConflict       = "PERIOD_CONFLICT"
	ErrCodeIntegrityViolation   = "INTEGRITY_VIOLATION"
	ErrCodeStorageFailure       = "STORAGE_FAILURE"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// IncompatibleAccounts creates an error for a transfer between accounts that
// cannot be paired (same account or different currencies)
func IncompatibleAccounts(message string) *AppError {
	return New(ErrCodeIncompatibleAccounts, message)
}

// PeriodConflict creates an error for overlapping budget periods
func PeriodConflict(message string) *AppError {
	return New(ErrCodePeriodConflict, message)
}

// IntegrityViolation creates an error for ledger data that breaks the
// debit/credit pairing
func IntegrityViolation(message string) *AppError {
	return New(ErrCodeIntegrityViolation, message)
}

// StorageFailure wraps a persistence error
func StorageFailure(message string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, message)
}

// AsStorage passes AppErrors through unchanged and wraps anything else as a
// storage failure. Returns nil for a nil error.
func AsStorage(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	return StorageFailure(message, err)
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the code of the outermost AppError in the chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) string {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any AppError in the chain carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// HTTPStatus maps an error code to an HTTP status
func HTTPStatus(code string) int {
	switch code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeIncompatibleAccounts:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodePeriodConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
