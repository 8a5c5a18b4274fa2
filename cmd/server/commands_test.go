package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/service/auth"
)

// setCLIEnv points the CLI at a fresh SQLite file.
func setCLIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TODO_DATABASE_DRIVER", "sqlite")
	t.Setenv("TODO_DATABASE_URL", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("TODO_AUTH_JWT_SECRET", "cli-test-secret-that-is-long-enough")
	t.Setenv("TODO_AUTH_BCRYPT_COST", "4")
	t.Setenv("TODO_SERVER_LOG_LEVEL", "error")
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), stdin, args...)
}

func runCLIContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCLI_UserLifecycle(t *testing.T) {
	setCLIEnv(t)

	_, err := runCLI(t, "", "migrate", "up")
	require.NoError(t, err)

	out, err := runCLI(t, "", "user", "create", "--username", "alice", "--password", "correct horse", "--active")
	require.NoError(t, err)
	assert.Contains(t, out, "created alice")
	assert.Contains(t, out, "active")

	out, err = runCLI(t, "correct horse\n", "user", "create", "--username", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	out, err = runCLI(t, "", "user", "approve", "bob")
	require.NoError(t, err)
	assert.Equal(t, "approved bob\n", out)

	out, err = runCLI(t, "", "rebalance", "--owner", "alice")
	require.NoError(t, err)
	assert.Equal(t, "rebalanced 0 todos for alice\n", out)
}

func TestCLI_RebalanceUnknownOwner(t *testing.T) {
	setCLIEnv(t)

	_, err := runCLI(t, "", "migrate", "up")
	require.NoError(t, err)

	_, err = runCLI(t, "", "rebalance", "--owner", "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestCLI_MigrateRejectsUnknownCommand(t *testing.T) {
	setCLIEnv(t)

	_, err := runCLI(t, "", "migrate", "sideways")
	assert.Error(t, err)
}

func TestCLI_HashPassword(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		out, err := runCLI(t, "", "hash-password", "--cost", "4", "s3cret-pass")
		require.NoError(t, err)

		hash := strings.TrimSpace(out)
		assert.NoError(t, auth.NewBcryptVerifier(4).Compare(hash, "s3cret-pass"))
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runCLI(t, "from-stdin\n", "hash-password", "--cost", "4")
		require.NoError(t, err)

		hash := strings.TrimSpace(out)
		assert.NoError(t, auth.NewBcryptVerifier(4).Compare(hash, "from-stdin"))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := runCLI(t, "", "hash-password")
		assert.Error(t, err)
	})
}

func TestCLI_ConfigFile(t *testing.T) {
	t.Setenv("TODO_AUTH_JWT_SECRET", "cli-test-secret-that-is-long-enough")

	dir := t.TempDir()
	path := filepath.Join(dir, "todo.yaml")
	yaml := fmt.Sprintf(`server:
  log_level: error
database:
  driver: sqlite
  url: %s
auth:
  bcrypt_cost: 4
`, filepath.Join(dir, "from-file.db"))
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	_, err := runCLI(t, "", "--config", path, "migrate", "up")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from-file.db"))

	_, err = runCLI(t, "", "--config", filepath.Join(dir, "missing.yaml"), "migrate", "up")
	assert.Error(t, err)
}

func TestCLI_ServeStopsOnCancel(t *testing.T) {
	setCLIEnv(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	t.Setenv("TODO_SERVER_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = runCLIContext(t, ctx, "", "serve", "--migrate")
	assert.NoError(t, err)
}
