package errs

import (
	"net/http"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(status)
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

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override, nil)
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override, nil)
}

// NewBadRequestError builds a 400. code defaults to BAD_REQUEST when nil.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message, override, code)
	e.Errors = errors
	e.Action = action
	return e
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

// NewConflictError builds a 409 for a duplicate the client can fix by
// choosing another value for field.
func NewConflictError(message, field string, code *string) *HTTPError {
	e := newHTTPError(http.StatusConflict, message, false, code)
	if field != "" {
		e.Errors = []FieldError{{Field: field, Error: message}}
	}
	return e
}

func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message, false, nil)
}

// NewInternalServerError never carries the underlying error text.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// ValidationError wraps a validator failure as a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}
