package errors

import "fmt"

var (
	// Auth
	ErrUnauthenticated    = fmt.Errorf("unauthenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	// Messaging
	ErrEmptyMessage      = fmt.Errorf("message is empty")
	ErrMessageTooLong    = fmt.Errorf("message exceeds maximum length")
	ErrRecipientNotFound = fmt.Errorf("recipient not found")

	// ErrDeliveryFailed marks a live push that could not be confirmed after the
	// message was already persisted. Logged only, never surfaced to the sender.
	ErrDeliveryFailed = fmt.Errorf("live delivery failed")

	// Runtime
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
