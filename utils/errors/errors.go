package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an APIError with the same code, so sentinel
// values below work with errors.Is regardless of message or details.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput       = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrValidation         = NewAPIError("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrUnauthorized       = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrInvalidCredentials = NewAPIError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized)
	ErrAuthorization      = NewAPIError("AUTHORIZATION_ERROR", "Only authorized users can add hoardings", http.StatusForbidden)
	ErrOwnership          = NewAPIError("OWNERSHIP_ERROR", "Not authorized to modify this hoarding", http.StatusForbidden)
	ErrNotFound           = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict           = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrNetwork            = NewAPIError("NETWORK_ERROR", "Cannot reach server", http.StatusServiceUnavailable)
	ErrStore              = NewAPIError("STORE_ERROR", "Persistence failure", http.StatusInternalServerError)
	ErrInternal           = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// Validation builds a VALIDATION_ERROR carrying a specific message and the
// offending values in Details.
func Validation(message string, details ...string) *APIError {
	return NewAPIError(ErrValidation.Code, message, ErrValidation.Status, strings.Join(details, "; "))
}

// NotFound builds a NOT_FOUND error for the named resource.
func NotFound(resource string) *APIError {
	return NewAPIError(ErrNotFound.Code, resource+" not found", ErrNotFound.Status)
}

// Store wraps a persistence failure.
func Store(err error, message string) *APIError {
	return Wrap(err, ErrStore.Code, message, ErrStore.Status)
}

// Network wraps a transport failure seen by the client.
func Network(err error, message string) *APIError {
	return NewAPIError(ErrNetwork.Code, message, ErrNetwork.Status, err.Error())
}

func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAPIError(code, message, status, details)
}

// As extracts the APIError from err, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
