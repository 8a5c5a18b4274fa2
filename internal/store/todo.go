package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
)

// TodoStore defines the interface for todo data persistence.
//
// Every method is scoped by owner: a todo that exists but belongs to another
// owner is reported exactly like a todo that does not exist.
type TodoStore interface {
	// ListByOwner returns the owner's todos sorted by position ascending.
	// Ties are broken by creation time and then id. Returns an empty,
	// non-nil slice when the owner has none.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error)

	// ListByOwnerByID returns the owner's todos in creation order.
	ListByOwnerByID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error)

	// GetByID retrieves a single todo.
	// Returns ErrTodoNotFound if it does not exist or is owned by someone else.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Todo, error)

	// Create inserts a fully built todo.
	// Returns validation errors from the domain Todo if data is invalid.
	Create(ctx context.Context, todo *domain.Todo) error

	// MaxPosition returns the largest position held by the owner and whether
	// the owner has any todos at all.
	MaxPosition(ctx context.Context, ownerID uuid.UUID) (float64, bool, error)

	// UpdateContent writes text, completed and updated_at. Position is never
	// touched. Returns ErrTodoNotFound if no row matched.
	UpdateContent(ctx context.Context, todo *domain.Todo) error

	// UpdatePosition writes the position of a single todo.
	// Returns ErrTodoNotFound if no row matched.
	UpdatePosition(ctx context.Context, id, ownerID uuid.UUID, position float64) error

	// Delete removes a todo. Survivors keep their positions.
	// Returns ErrTodoNotFound if no row matched.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// LockOwner serialises concurrent writers for one owner until the
	// surrounding transaction ends. Only meaningful on a store obtained
	// through WithTx.
	LockOwner(ctx context.Context, ownerID uuid.UUID) error

	// WithTx returns a new TodoStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TodoStore
}
