package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTodo(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("valid todo", func(t *testing.T) {
		t.Parallel()

		todo, err := NewTodo(ownerID, "  buy milk  ", 1000)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, todo.ID)
		assert.Equal(t, ownerID, todo.OwnerID)
		assert.Equal(t, "buy milk", todo.Text, "text should be trimmed")
		assert.False(t, todo.Completed)
		assert.Equal(t, 1000.0, todo.Position)
		assert.False(t, todo.CreatedAt.IsZero())
		assert.Equal(t, todo.CreatedAt, todo.UpdatedAt)
	})

	t.Run("whitespace only text", func(t *testing.T) {
		t.Parallel()

		_, err := NewTodo(ownerID, " \t\n ", 1000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.True(t, errors.Is(err, ErrEmptyTodoText))
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()

		_, err := NewTodo(uuid.Nil, "text", 1000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyTodoOwnerID))
	})
}

func TestTodo_ApplyEdit(t *testing.T) {
	t.Parallel()

	text := func(s string) *string { return &s }
	done := func(b bool) *bool { return &b }

	tests := []struct {
		name          string
		text          *string
		completed     *bool
		wantErr       error
		wantText      string
		wantCompleted bool
	}{
		{name: "text only", text: text(" new "), wantText: "new"},
		{name: "completed only", completed: done(true), wantText: "original", wantCompleted: true},
		{name: "both", text: text("x"), completed: done(true), wantText: "x", wantCompleted: true},
		{name: "nothing", wantText: "original"},
		{name: "blank text", text: text("   "), wantErr: ErrEmptyTodoText, wantText: "original"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			todo, err := NewTodo(uuid.New(), "original", 42)
			require.NoError(t, err)

			err = todo.ApplyEdit(tt.text, tt.completed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tt.wantText, todo.Text)
			assert.Equal(t, tt.wantCompleted, todo.Completed)
			assert.Equal(t, 42.0, todo.Position, "edits must never move a todo")
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("todoIds", "must not be empty", nil)
	assert.Equal(t, "todoIds must not be empty", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	wrapped := NewValidationError("id", "has invalid format", ErrInvalidID)
	assert.ErrorIs(t, wrapped, ErrInvalidID)
	assert.ErrorIs(t, wrapped, ErrValidation)
}
