// Package apperrors defines the error kinds shared by the credential store,
// session manager, ledger and request handlers.
//
// Every error returned across a package boundary wraps exactly one kind, so
// callers classify with errors.Is and never by message.
package apperrors

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage failure")
)

// Specific errors. Each one wraps its kind.
var (
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrSessionInvalid       = fmt.Errorf("%w: session missing or expired", ErrUnauthenticated)
	ErrRegistrationDisabled = fmt.Errorf("%w: registration disabled", ErrForbidden)
	ErrWeakPassword         = fmt.Errorf("%w: password must be at least 12 characters with letters and digits", ErrInvalidInput)
	ErrInvalidRole          = fmt.Errorf("%w: invalid role", ErrInvalidInput)
	ErrDuplicateUsername    = fmt.Errorf("%w: username already exists", ErrConflict)
)

// Invalid returns an ErrInvalidInput with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

type storageError struct {
	msg   string
	cause error
}

func (e *storageError) Error() string { return ErrStorage.Error() + ": " + e.msg }

func (e *storageError) Unwrap() []error { return []error{ErrStorage, e.cause} }

// Storage wraps a persistence error. The message shown to callers is msg
// only; the cause stays reachable through Detail and errors.Is/As.
func Storage(msg string, cause error) error {
	if cause == nil {
		return nil
	}
	return &storageError{msg: msg, cause: cause}
}

// Detail returns the underlying cause of a storage error for logging, or the
// error text itself for any other error.
func Detail(err error) string {
	var se *storageError
	if errors.As(err, &se) {
		return se.cause.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
