package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecificErrorsWrapTheirKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrInvalidCredentials, ErrUnauthenticated},
		{ErrSessionInvalid, ErrUnauthenticated},
		{ErrRegistrationDisabled, ErrForbidden},
		{ErrWeakPassword, ErrInvalidInput},
		{ErrInvalidRole, ErrInvalidInput},
		{ErrDuplicateUsername, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.ErrorIs(t, fmt.Errorf("outer: %w", tt.err), tt.kind)
		})
	}
}

func TestInvalidAndNotFound(t *testing.T) {
	err := Invalid("amount must be positive, got %v", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: amount must be positive, got -1", err.Error())

	err = NotFound("expense", 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "not found: expense 7", err.Error())
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Storage("failed to save expense", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage failure: failed to save expense", err.Error())
	assert.Equal(t, "database is locked", Detail(err))
	assert.Equal(t, "not found: x 1", Detail(NotFound("x", 1)))
}

func TestStorageNilCause(t *testing.T) {
	assert.NoError(t, Storage("nothing", nil))
}

func TestStorageKeepsContextErrors(t *testing.T) {
	err := Storage("failed to list expenses", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
