package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Todo
var (
	ErrEmptyTodoID      = errors.New("todo ID cannot be empty")
	ErrEmptyTodoOwnerID = errors.New("todo owner ID cannot be empty")
	ErrEmptyTodoText    = errors.New("todo text cannot be empty")
)

// Todo is a single task record in its owner's ordered list.
//
// Position orders the record among the owner's other todos: sorting an owner's
// todos by Position ascending yields the list as the user sees it. Only the
// ordering code paths change Position; edits to Text or Completed never do.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Position  float64   `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTodo creates an incomplete Todo for ownerID at the given position.
// The text is trimmed before validation; whitespace-only text is rejected.
func NewTodo(ownerID uuid.UUID, text string, position float64) (*Todo, error) {
	now := time.Now().UTC()
	todo := &Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Text:      strings.TrimSpace(text),
		Completed: false,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := todo.Validate(); err != nil {
		return nil, err
	}

	return todo, nil
}

// Validate checks if the Todo has valid data.
func (t *Todo) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyTodoID)
	}

	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner_id", "cannot be empty", ErrEmptyTodoOwnerID)
	}

	if strings.TrimSpace(t.Text) == "" {
		return NewValidationError("text", "cannot be empty", ErrEmptyTodoText)
	}

	return nil
}

// ApplyEdit sets the text and/or completion flag. Nil arguments leave the
// corresponding field untouched. Position is never modified here.
func (t *Todo) ApplyEdit(text *string, completed *bool) error {
	if text != nil {
		trimmed := strings.TrimSpace(*text)
		if trimmed == "" {
			return NewValidationError("text", "cannot be empty", ErrEmptyTodoText)
		}
		t.Text = trimmed
	}

	if completed != nil {
		t.Completed = *completed
	}

	t.UpdatedAt = time.Now().UTC()
	return nil
}
