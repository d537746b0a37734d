package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes carried in the error_code extension
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeMissingColumn       = "MISSING_COLUMN"
	CodeUpstreamFetchFailed = "UPSTREAM_FETCH_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	CodeExportFailed        = "EXPORT_FAILED"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// Predefined errors
var (
	ErrInvalidRequest     = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed   = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// ErrValidation creates a validation error for a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// MissingColumns reports required sheet columns that could not be resolved
func MissingColumns(fields []string) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeMissingColumn,
		"The source sheet is missing required columns",
		MissingColumnDetails{Fields: fields},
	)
}

// MissingColumnDetails lists the unresolved fields
type MissingColumnDetails struct {
	Fields []string `json:"fields"`
}

// UpstreamFetchFailed reports a failed read of the source sheet
func UpstreamFetchFailed(err error) *APIError {
	return NewWithDetails(http.StatusBadGateway, CodeUpstreamFetchFailed, "Failed to fetch the source sheet", err.Error())
}

// ExportFailed reports a workbook or CSV that could not be produced
func ExportFailed(format string, err error) *APIError {
	apiErr := New(http.StatusInternalServerError, CodeExportFailed, fmt.Sprintf("Failed to produce %s export", format))
	if err != nil {
		apiErr.Details = err.Error()
	}
	return apiErr
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// NewValidationError creates a simple validation error
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}
