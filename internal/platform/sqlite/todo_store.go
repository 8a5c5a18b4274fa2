package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/store"
)

const todoColumns = `id, owner_id, text, completed, position, created_at, updated_at`

// TodoStore implements store.TodoStore on SQLite.
type TodoStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTodoStore creates a SQLite TodoStore. If logger is nil, slog.Default is used.
func NewTodoStore(db store.DBTX, logger *slog.Logger) *TodoStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoStore{
		db:     db,
		logger: logger.With(slog.String("component", "todo_store")),
	}
}

var _ store.TodoStore = (*TodoStore)(nil)

// WithTx implements store.TodoStore.WithTx
func (s *TodoStore) WithTx(tx *sql.Tx) store.TodoStore {
	return &TodoStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var t domain.Todo
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Text,
		&t.Completed,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOwner implements store.TodoStore.ListByOwner
func (s *TodoStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	return s.list(ctx, `SELECT `+todoColumns+` FROM todos
		WHERE owner_id = ?
		ORDER BY position ASC, created_at ASC, id ASC`, ownerID)
}

// ListByOwnerByID implements store.TodoStore.ListByOwnerByID
func (s *TodoStore) ListByOwnerByID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	return s.list(ctx, `SELECT `+todoColumns+` FROM todos
		WHERE owner_id = ?
		ORDER BY created_at ASC, id ASC`, ownerID)
}

func (s *TodoStore) list(ctx context.Context, query string, ownerID uuid.UUID) ([]*domain.Todo, error) {
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list todos",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError("todo", "list", err)
	}
	defer func() { _ = rows.Close() }()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError("todo", "list", err)
	}
	return todos, nil
}

// GetByID implements store.TodoStore.GetByID
func (s *TodoStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTodoNotFound
		}
		return nil, MapError("todo", "get", err)
	}
	return t, nil
}

// Create implements store.TodoStore.Create
func (s *TodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID,
		todo.OwnerID,
		todo.Text,
		todo.Completed,
		todo.Position,
		todo.CreatedAt,
		todo.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner with ID %s not found", store.ErrInvalidEntity, todo.OwnerID)
		}
		log.Error("failed to create todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return MapError("todo", "create", err)
	}

	log.Debug("todo created",
		slog.String("todo_id", todo.ID.String()),
		slog.Float64("position", todo.Position))
	return nil
}

// MaxPosition implements store.TodoStore.MaxPosition
func (s *TodoStore) MaxPosition(ctx context.Context, ownerID uuid.UUID) (float64, bool, error) {
	var maxPos sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM todos WHERE owner_id = ?`, ownerID,
	).Scan(&maxPos); err != nil {
		return 0, false, MapError("todo", "max_position", err)
	}
	return maxPos.Float64, maxPos.Valid, nil
}

// UpdateContent implements store.TodoStore.UpdateContent
func (s *TodoStore) UpdateContent(ctx context.Context, todo *domain.Todo) error {
	if err := todo.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET text = ?, completed = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		todo.Text, todo.Completed, todo.UpdatedAt, todo.ID, todo.OwnerID,
	)
	if err != nil {
		return MapError("todo", "update", err)
	}
	return checkRowsAffected(result, store.ErrTodoNotFound)
}

// UpdatePosition implements store.TodoStore.UpdatePosition
func (s *TodoStore) UpdatePosition(ctx context.Context, id, ownerID uuid.UUID, position float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET position = ? WHERE id = ? AND owner_id = ?`,
		position, id, ownerID,
	)
	if err != nil {
		return MapError("todo", "update_position", err)
	}
	return checkRowsAffected(result, store.ErrTodoNotFound)
}

// Delete implements store.TodoStore.Delete
func (s *TodoStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return MapError("todo", "delete", err)
	}
	return checkRowsAffected(result, store.ErrTodoNotFound)
}

// LockOwner implements store.TodoStore.LockOwner. A no-op write on the
// owner's row makes the transaction take SQLite's write lock even when it
// was opened as DEFERRED.
func (s *TodoStore) LockOwner(ctx context.Context, ownerID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET updated_at = updated_at WHERE id = ?`, ownerID)
	if err != nil {
		return MapError("todo", "lock_owner", err)
	}
	return checkRowsAffected(result, store.ErrUserNotFound)
}
