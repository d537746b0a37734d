package errors

import "fmt"

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is the error services and commands return. Message names the
// operation that failed; Field is set for validation errors and names the
// offending input.
type AppError struct {
	Type    ErrorType
	Message string
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, msg)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewNetworkError wraps a failed read of the data source
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError wraps a dataset that could not be interpreted
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError rejects the input named by field. cause may be a
// sentinel so callers can still match it with errors.Is.
func NewAppValidationError(field, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeValidation, Message: message, Field: field, Cause: cause}
}

// NewExportError wraps a failure to render an export
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError wraps invalid or unusable configuration
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
