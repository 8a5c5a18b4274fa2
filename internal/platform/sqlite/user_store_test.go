package sqlite_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/sqlite"
	"github.com/vincentyap91/todolist/internal/store"
	"github.com/vincentyap91/todolist/internal/testdb"
)

func TestUserStore(t *testing.T) {
	t.Parallel()
	db := testdb.OpenSQLite(t)
	users := sqlite.NewUserStore(db, nil)
	ctx := context.Background()

	alice := testdb.MustCreateUser(t, users, "alice", domain.StatusPending)

	t.Run("get by id", func(t *testing.T) {
		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, domain.RoleUser, got.Role)
		assert.Equal(t, domain.StatusPending, got.Status)
		assert.Equal(t, alice.HashedPassword, got.HashedPassword)
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = users.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup, err := domain.NewUser("alice", "other@example.com", "hash")
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrUsernameExists)
	})

	t.Run("update status", func(t *testing.T) {
		require.NoError(t, users.UpdateStatus(ctx, alice.ID, domain.StatusActive))
		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)

		assert.ErrorIs(t, users.UpdateStatus(ctx, uuid.New(), domain.StatusActive), store.ErrUserNotFound)
		assert.ErrorIs(t, users.UpdateStatus(ctx, alice.ID, "banned"), domain.ErrInvalidUserStatus)
	})
}

func TestDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"file:/tmp/todo.db?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000",
		sqlite.DSN("/tmp/todo.db"))
	assert.Equal(t,
		"file::memory:?cache=shared&_txlock=immediate&_foreign_keys=on&_busy_timeout=5000",
		sqlite.DSN("file::memory:?cache=shared"))
}
