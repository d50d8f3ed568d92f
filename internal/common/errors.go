package common

import (
	"errors"
	"fmt"
)

var (
	// request specific errors
	ErrValidation    = errors.New("validation error")
	ErrAlreadyExists = errors.New("already exists")

	// repository specific errors
	ErrNotFound = errors.New("not found")

	// access errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// otp specific errors
	ErrOTPInvalid      = errors.New("invalid otp")
	ErrOTPExpired      = errors.New("otp expired")
	ErrAlreadyVerified = errors.New("already verified")
	ErrTooManyRequests = errors.New("too many requests")
	ErrDelivery        = errors.New("delivery failed")
)

// Error pairs one of the sentinel kinds above with a message that is safe to
// show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the caller facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
