// Package apperror holds the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"net/http"
)

const (
	CodePublishFailed = "PUBLISH_FAILED"
	CodeNotFound      = "RESOURCE_NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternal      = "INTERNAL_ERROR"
)

// ErrDataIntegrity marks more than one document for a (section, state) pair.
// It is logged and tie-broken by the stores and never reaches a caller.
var ErrDataIntegrity = errors.New("data integrity violation: duplicate content state")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a caller-facing failure with a stable code and HTTP status.
type Error struct {
	Code    string
	Message string
	Status  int
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func PublishFailed(msg string, cause error) *Error {
	return &Error{Code: CodePublishFailed, Message: msg, Status: http.StatusInternalServerError, Err: cause}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, Status: http.StatusNotFound}
}

func Validation(msg string, details ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest, Details: details}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg, Status: http.StatusUnauthorized}
}

func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "An unexpected error occurred", Status: http.StatusInternalServerError, Err: cause}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
