package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// UpstreamErrorMessage describes failures talking to the plans backend.
	UpstreamErrorMessage = "plans backend request failed"
	// DecodeErrorMessage describes a backend response that is not valid JSON.
	DecodeErrorMessage = "plans backend returned malformed data"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// StorageErrorMessage describes local state store failures.
	StorageErrorMessage = "local storage operation failed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest reports invalid caller input. The message is shown to users.
func BadRequest(err error, message string) *AppError {
	return New(err, http.StatusBadRequest, message)
}

// WrapUpstream wraps a transport or status failure of the plans backend.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, UpstreamErrorMessage)
}

// WrapDecode wraps a JSON decoding failure of a backend payload.
func WrapDecode(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, DecodeErrorMessage)
}

// WrapStorage wraps a local state store failure.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, StorageErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not
// an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the safe message carried by err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return SystemErrorMessage
}
