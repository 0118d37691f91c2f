// Package apperrors defines the typed errors shared by services and HTTP handlers.
package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error identifier returned to clients.
type ErrorCode string

// AppError is an application error carrying the HTTP status it maps to.
type AppError struct {
	Code     ErrorCode   `json:"error"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same code, so copies made by
// WithDetails/WithMessage still satisfy errors.Is against the predefined values.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an AppError.
func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

// Wrap creates an AppError that keeps err in the chain.
func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// WithDetails returns a copy of e with details attached.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a different human readable message.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithError returns a copy of e wrapping err.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Is wraps errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// HTTPStatus returns the status code for err, 500 for anything that is not an AppError.
func HTTPStatus(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

// From converts any error into an AppError, hiding internals of unknown errors.
func From(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithError(err)
}
