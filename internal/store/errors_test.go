package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	mapped := NewStoreError("todo", "get", "not found", fmt.Errorf("%w: sql: no rows", ErrNotFound))

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{name: "nil", err: nil},
		{name: "unrelated", err: errors.New("connection reset")},
		{name: "todo not found", err: ErrTodoNotFound, notFound: true},
		{name: "user not found wrapped", err: fmt.Errorf("lookup: %w", ErrUserNotFound), notFound: true},
		{name: "store error around not found", err: mapped, notFound: true},
		{name: "username taken", err: ErrUsernameExists, duplicate: true},
		{
			name:      "store error around duplicate",
			err:       NewStoreError("user", "create", "duplicate", ErrDuplicate),
			duplicate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("database is locked")
	err := NewStoreError("todo", "update_position", "database locked",
		fmt.Errorf("%w: %v", ErrTransactionFailed, cause))

	assert.Equal(t,
		"update_position operation on todo failed: database locked: transaction failed: database is locked",
		err.Error())
	assert.ErrorIs(t, err, ErrTransactionFailed)

	var target *StoreError
	assert.True(t, errors.As(fmt.Errorf("reorder: %w", err), &target))
	assert.Equal(t, "todo", target.Entity)
}

func TestStoreError_WithoutCause(t *testing.T) {
	err := NewStoreError("todo", "delete", "no rows", nil)

	assert.Equal(t, "delete operation on todo failed: no rows", err.Error())
	assert.NoError(t, err.Unwrap())
}
