package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel the error was built from, so callers can
// still match it with errors.Is.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func NotFound(cause error, message string, details string) *APIError {
	return &APIError{Code: "NOT_FOUND", Message: message, Details: details, HTTPStatus: http.StatusNotFound, cause: cause}
}

func Conflict(cause error, message string, details string) *APIError {
	return &APIError{Code: "CONFLICT", Message: message, Details: details, HTTPStatus: http.StatusConflict, cause: cause}
}

func Forbidden(cause error, message string, details string) *APIError {
	return &APIError{Code: "FORBIDDEN", Message: message, Details: details, HTTPStatus: http.StatusForbidden, cause: cause}
}

// Invalid is a 400 that still matches the sentinel it was built from.
func Invalid(cause error, message string, details string) *APIError {
	return &APIError{Code: "BAD_REQUEST", Message: message, Details: details, HTTPStatus: http.StatusBadRequest, cause: cause}
}

func BadRequest(message string, details string) *APIError {
	return New("BAD_REQUEST", message, details, http.StatusBadRequest)
}

func Validation(details string) *APIError {
	return New("VALIDATION_ERROR", "request validation failed", details, http.StatusBadRequest)
}
