package migrate_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/platform/migrate"
	"github.com/vincentyap91/todolist/internal/platform/sqlite"
)

func hasTable(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
	).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l, buf := logger.NewTestLogger()

	require.NoError(t, migrate.Up(ctx, db, "sqlite", l))
	assert.True(t, hasTable(t, db, "users"))
	assert.True(t, hasTable(t, db, "todos"))
	assert.True(t, hasTable(t, db, migrate.TableName))
	assert.Contains(t, buf.String(), `"component":"migrations"`)

	// idempotent
	require.NoError(t, migrate.Up(ctx, db, "sqlite", l))

	require.NoError(t, migrate.Run(ctx, db, "sqlite", migrate.CommandStatus, l))
	require.NoError(t, migrate.Run(ctx, db, "sqlite", migrate.CommandVersion, l))

	require.NoError(t, migrate.Run(ctx, db, "sqlite", migrate.CommandDown, l))
	assert.False(t, hasTable(t, db, "todos"))
	assert.True(t, hasTable(t, db, "users"))

	require.NoError(t, migrate.Run(ctx, db, "sqlite", migrate.CommandReset, l))
	assert.False(t, hasTable(t, db, "users"))
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = migrate.Run(ctx, db, "mysql", migrate.CommandUp, nil)
	assert.ErrorContains(t, err, "unsupported database driver")

	err = migrate.Run(ctx, db, "sqlite", "sideways", nil)
	assert.ErrorContains(t, err, "unknown migration command")
}
