package errs

import (
	"errors"
	"net/http"
)

// newHTTPError builds an HTTPError whose code derives from the status text,
// unless a custom code is given.
func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	// http.StatusText(404) => "Not Found" => "NOT_FOUND"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(status))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code optionally replaces "BAD_REQUEST"; errors carries field errors, if any.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message, override, code)
	e.Errors = errors
	return e
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

// NewMethodNotAllowedError creates a 405 Method Not Allowed HTTPError.
func NewMethodNotAllowedError(message string) *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, message, true, nil)
}

// NewConflictError creates a 409 Conflict HTTPError.
//
// Used when the request is valid but the current state of the data blocks it,
// e.g. deleting a record that still has dependents.
func NewConflictError(message string, code *string) *HTTPError {
	return newHTTPError(http.StatusConflict, message, true, code)
}

// NewUnprocessableEntityError creates a 422 Unprocessable Entity HTTPError
// carrying field-level validation errors.
func NewUnprocessableEntityError(message string, errors []FieldError) *HTTPError {
	e := newHTTPError(http.StatusUnprocessableEntity, message, true, nil)
	e.Errors = errors
	return e
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError() *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), false, nil)
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, never the internal error message.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// NewNotImplementedError creates a 501 Not Implemented HTTPError.
func NewNotImplementedError(message string) *HTTPError {
	return newHTTPError(http.StatusNotImplemented, message, true, nil)
}

// NewServiceUnavailableError creates a 503 Service Unavailable HTTPError.
func NewServiceUnavailableError(message string) *HTTPError {
	return newHTTPError(http.StatusServiceUnavailable, message, false, nil)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an *HTTPError.
// A nil error maps to 200.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}
