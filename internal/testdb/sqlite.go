package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/platform/migrate"
	"github.com/vincentyap91/todolist/internal/platform/sqlite"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// OpenSQLite returns a migrated SQLite database in the test's temp dir.
// The connection is closed when the test finishes.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "todo_test.db"))
	require.NoError(t, err, "Failed to open sqlite database")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	quiet, _ := logger.NewTestLogger()
	require.NoError(t, migrate.Up(ctx, db, "sqlite", quiet), "Failed to run migrations")

	return db
}
