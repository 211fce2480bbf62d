package service

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")

	// Policy rejections: routine outcomes, not system failures.
	ErrLowIntensity   = errors.New("beam intensity too low for violation")
	ErrAlreadyDecided = errors.New("violation already processed")
	ErrNotApproved    = errors.New("violation not approved for payment")
	ErrAlreadyPaid    = errors.New("violation already paid")

	// Consistency violations: always hard failures.
	ErrSignatureInvalid = errors.New("payment signature verification failed")

	ErrAlreadyRegistered   = errors.New("vehicle already registered")
	ErrAuthFailed          = errors.New("authentication failed")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
