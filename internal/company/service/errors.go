package service

import (
	"errors"
	"strings"
)

// Sentinel errors for the registration workflow; the HTTP handler maps them to status codes and messages.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("email already registered")
	ErrNotFound           = errors.New("company not found")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrPasswordAlreadySet = errors.New("password already set")
	ErrInvalidOTP         = errors.New("invalid or expired otp")
	ErrMismatch           = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeliveryFailed     = errors.New("otp delivery failed")
)

// ValidationError carries every violated rule. errors.Is(err, ErrInvalidInput) holds for it.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidInput.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(messages ...string) error {
	return &ValidationError{Messages: messages}
}

// ValidationMessages returns the messages of a ValidationError in err's chain, or nil.
func ValidationMessages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	return nil
}
