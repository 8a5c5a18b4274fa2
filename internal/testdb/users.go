package testdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/store"
)

// MustCreateUser inserts a user with the given status and a placeholder
// password hash, failing the test on error.
func MustCreateUser(t testing.TB, users store.UserStore, username string, status domain.UserStatus) *domain.User {
	t.Helper()

	user, err := domain.NewUser(username, username+"@example.com", "not-a-real-hash")
	require.NoError(t, err)
	user.Status = status

	require.NoError(t, users.Create(context.Background(), user))
	return user
}
