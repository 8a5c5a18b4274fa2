package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
)

// UserStore defines the interface for user data persistence.
//
// Accounts are managed outside this service; the store exposes what the
// login endpoint and the request gate need, plus Create for seeding.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrUsernameExists if the username is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateStatus changes the account status.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
