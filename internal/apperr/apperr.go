// Package apperr classifies errors crossing the service and HTTP layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType names a class of failure.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation_error"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeProcessing  ErrorType = "processing_error"
	ErrorTypeTooLarge    ErrorType = "too_large"
	ErrorTypeTransport   ErrorType = "transport_error"
	ErrorTypeApplication ErrorType = "application_failure"
)

// AppError is an error with a type and a user-facing message.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
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

// New creates an AppError of the given type.
func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
		Code:    codeFor(errType),
	}
}

func NewValidation(message string, err error) *AppError {
	return New(ErrorTypeValidation, message, err)
}

func NewNotFound(message string, err error) *AppError {
	return New(ErrorTypeNotFound, message, err)
}

func NewProcessing(message string, err error) *AppError {
	return New(ErrorTypeProcessing, message, err)
}

func NewTooLarge(message string, err error) *AppError {
	return New(ErrorTypeTooLarge, message, err)
}

func NewTransport(message string, err error) *AppError {
	return New(ErrorTypeTransport, message, err)
}

// NewApplication wraps an error reported inside an otherwise successful response.
func NewApplication(message string) *AppError {
	return New(ErrorTypeApplication, message, nil)
}

// TypeOf returns the type of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

func IsValidation(err error) bool  { return TypeOf(err) == ErrorTypeValidation }
func IsNotFound(err error) bool    { return TypeOf(err) == ErrorTypeNotFound }
func IsTooLarge(err error) bool    { return TypeOf(err) == ErrorTypeTooLarge }
func IsApplication(err error) bool { return TypeOf(err) == ErrorTypeApplication }

// Message returns the user-facing message of err. AppErrors yield their own
// message without the wrapped cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeTransport:
		return http.StatusBadGateway
	case ErrorTypeApplication:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Wrap prefixes the message of err, keeping its type when it already is an AppError.
func Wrap(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr,
			Code:    appErr.Code,
		}
	}
	return New(errType, message, err)
}

func codeFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeProcessing:
		return "PROCESSING_ERROR"
	case ErrorTypeTooLarge:
		return "TOO_LARGE"
	case ErrorTypeTransport:
		return "TRANSPORT_ERROR"
	case ErrorTypeApplication:
		return "APPLICATION_FAILURE"
	default:
		return "UNKNOWN_ERROR"
	}
}
