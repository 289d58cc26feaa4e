package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the category of an application error
type Code int

const (
	CodeInternal Code = iota + 1000
	CodeNotFound
	CodeForbidden
	CodeValidation
	CodeInvalidOperation
	CodeDuplicateUsername
	CodeUpstreamMedia
	CodeUpstreamIdentity
	CodeUnauthorized
)

var statusByCode = map[Code]int{
	CodeInternal:          http.StatusInternalServerError,
	CodeNotFound:          http.StatusNotFound,
	CodeForbidden:         http.StatusForbidden,
	CodeValidation:        http.StatusBadRequest,
	CodeInvalidOperation:  http.StatusBadRequest,
	CodeDuplicateUsername: http.StatusBadRequest,
	CodeUpstreamMedia:     http.StatusInternalServerError,
	CodeUpstreamIdentity:  http.StatusInternalServerError,
	CodeUnauthorized:      http.StatusUnauthorized,
}

// AppError is the error type services return to the request boundary.
// Message is safe to show to callers; Details carries the underlying cause
// when it is useful to the client.
type AppError struct {
	Code    Code
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error's code
func (e *AppError) Status() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New creates an application error
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an application error around a cause
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func InvalidOperation(message string) *AppError {
	return New(CodeInvalidOperation, message)
}

func Internal(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// WithDetails sets the client-visible details and returns the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
