package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFoundError("missing")))
	assert.Equal(t, ErrorTypeValidation, TypeOf(NewValidationError("bad input")))
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain error")))
}

func TestTypeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading user: %w", NewConflictError("email already in use"))
	assert.Equal(t, ErrorTypeConflict, TypeOf(err))
	assert.True(t, IsType(err, ErrorTypeConflict))
	assert.False(t, IsType(err, ErrorTypeNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to query users", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to query users")
	assert.Contains(t, err.Error(), "connection refused")
}
