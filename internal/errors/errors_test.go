package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "entry not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading entry: %w", NewNotFoundError("entry not found"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "entry not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "amount", Message: "amount must be a number"},
		{Field: "productId", Message: "productId is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestInsufficientStockError_Creation(t *testing.T) {
	err := NewInsufficientStockError("p-1", 3, -2)

	assert.Equal(t, "p-1", err.ProductID)
	assert.Equal(t, 3, err.Stock)
	assert.Equal(t, -2, err.Candidate)
	assert.Contains(t, err.Error(), "p-1")

	ie, ok := IsInsufficientStockError(fmt.Errorf("edit: %w", err))
	assert.True(t, ok)
	assert.Equal(t, -2, ie.Candidate)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError("bad"), KindValidation},
		{"not found", NewNotFoundError("missing"), KindNotFound},
		{"insufficient stock", NewInsufficientStockError("p", 1, -1), KindInsufficientStock},
		{"conflict", NewConflictError("dup"), KindConflict},
		{"forbidden", NewForbiddenError("no"), KindForbidden},
		{"unauthorized", NewUnauthorizedError("who"), KindUnauthorized},
		{"deadlock", NewDeadlockError("retry"), KindDeadlock},
		{"wrapped conflict", fmt.Errorf("x: %w", NewConflictError("dup")), KindConflict},
		{"plain", errors.New("boom"), KindInternal},
		{"internal", NewInternalError("boom", nil), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
