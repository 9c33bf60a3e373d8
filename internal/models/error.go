package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication outcomes
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRateLimited         = errors.New("rate limited by identity provider")
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// Session outcomes
	ErrSessionExpired = errors.New("session expired")

	// Confirmation-code outcomes
	ErrInvalidCode     = errors.New("verification code is incorrect")
	ErrExpiredCode     = errors.New("verification code has expired")
	ErrAlreadyVerified = errors.New("account is already verified")
)

// AccountLockedError signals that an account is temporarily locked out of
// login. UnlockAt is the moment the lockout window elapses.
type AccountLockedError struct {
	UnlockAt time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.UnlockAt.UTC().Format(time.RFC3339))
}

// RemainingMinutes reports the lockout time left, rounded up to whole
// minutes and never less than 1. This is the value exposed to clients.
func (e *AccountLockedError) RemainingMinutes(now time.Time) int {
	remaining := e.UnlockAt.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// UnconfirmedError signals that the account exists but has not completed
// email verification. Carries the identity needed by clients to resume the
// confirmation flow.
type UnconfirmedError struct {
	Username string
	Email    string
}

func (e *UnconfirmedError) Error() string {
	return "account is not confirmed"
}

// StorageError wraps a failure from the relational store. Storage failures
// are fatal to the enclosing request; the open transaction is rolled back
// before the error surfaces.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
