package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents an application error with additional context
type AppError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	ExitCode int         `json:"-"`
	Internal error       `json:"-"`
	Details  interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeUsage               = "USAGE_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeMetadataUnavailable = "METADATA_UNAVAILABLE"
	ErrCodeProviderAuth        = "PROVIDER_AUTH_ERROR"
	ErrCodeProviderAPI         = "PROVIDER_API_ERROR"
)

// Process exit statuses
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

// New creates a new AppError
func New(code, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Internal: err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, ExitFatal)
}

// Usage creates a command-line usage error
func Usage(message string) *AppError {
	return New(ErrCodeUsage, message, ExitUsage)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), ExitFatal)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, ExitUsage).WithDetails(details)
}

// MetadataUnavailable creates an error for an unreachable instance metadata service
func MetadataUnavailable(endpoint string, err error) *AppError {
	return Wrap(err, ErrCodeMetadataUnavailable,
		fmt.Sprintf("Failed to read instance identity from metadata endpoint %s", endpoint),
		ExitFatal)
}

// ProviderAuthError creates a provider authentication error
func ProviderAuthError(provider string, err error) *AppError {
	return Wrap(err, ErrCodeProviderAuth,
		fmt.Sprintf("Failed to authenticate with %s", provider),
		ExitFatal)
}

// ProviderAPIError creates a provider API error
func ProviderAPIError(provider string, err error) *AppError {
	return Wrap(err, ErrCodeProviderAPI,
		fmt.Sprintf("Failed to communicate with %s API", provider),
		ExitFatal)
}

// As reports whether err holds an *AppError and returns it
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err holds an *AppError with the given code
func IsCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// ExitCode maps an error to a process exit status. Errors that carry no
// AppError are treated as fatal
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if appErr, ok := As(err); ok && appErr.ExitCode != ExitOK {
		return appErr.ExitCode
	}
	return ExitFatal
}
