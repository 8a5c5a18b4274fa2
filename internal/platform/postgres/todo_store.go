package postgres

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

// PostgresTodoStore implements the store.TodoStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTodoStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTodoStore creates a new PostgreSQL implementation of the TodoStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTodoStore(db store.DBTX, logger *slog.Logger) *PostgresTodoStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTodoStore{
		db:     db,
		logger: logger.With(slog.String("component", "todo_store")),
	}
}

// Ensure PostgresTodoStore implements store.TodoStore interface
var _ store.TodoStore = (*PostgresTodoStore)(nil)

// WithTx implements store.TodoStore.WithTx
func (s *PostgresTodoStore) WithTx(tx *sql.Tx) store.TodoStore {
	return &PostgresTodoStore{
		db:     tx,
		logger: s.logger,
	}
}

// ListByOwner implements store.TodoStore.ListByOwner
func (s *PostgresTodoStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE owner_id = $1
		ORDER BY position ASC, created_at ASC, id ASC`
	return s.list(ctx, query, ownerID)
}

// ListByOwnerByID implements store.TodoStore.ListByOwnerByID
func (s *PostgresTodoStore) ListByOwnerByID(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC`
	return s.list(ctx, query, ownerID)
}

func (s *PostgresTodoStore) list(ctx context.Context, query string, ownerID uuid.UUID) ([]*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to list todos",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError("todo", "list", err)
	}
	defer func() { _ = rows.Close() }()

	todos := make([]*domain.Todo, 0)
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(
			&t.ID,
			&t.OwnerID,
			&t.Text,
			&t.Completed,
			&t.Position,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError("todo", "list", err)
	}

	log.Debug("todos listed",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(todos)))
	return todos, nil
}

// GetByID implements store.TodoStore.GetByID
func (s *PostgresTodoStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Todo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + todoColumns + `
		FROM todos
		WHERE id = $1 AND owner_id = $2`

	var t domain.Todo
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID,
		&t.OwnerID,
		&t.Text,
		&t.Completed,
		&t.Position,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("todo not found", slog.String("todo_id", id.String()))
			return nil, store.ErrTodoNotFound
		}
		log.Error("failed to get todo by ID",
			slog.String("error", err.Error()),
			slog.String("todo_id", id.String()))
		return nil, MapError("todo", "get", err)
	}

	return &t, nil
}

// Create implements store.TodoStore.Create
func (s *PostgresTodoStore) Create(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		log.Warn("todo validation failed during create",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return err
	}

	query := `
		INSERT INTO todos (` + todoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
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
			log.Warn("foreign key violation during todo creation",
				slog.String("todo_id", todo.ID.String()),
				slog.String("owner_id", todo.OwnerID.String()))
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
func (s *PostgresTodoStore) MaxPosition(ctx context.Context, ownerID uuid.UUID) (float64, bool, error) {
	var maxPos sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(position) FROM todos WHERE owner_id = $1`, ownerID,
	).Scan(&maxPos)
	if err != nil {
		return 0, false, MapError("todo", "max_position", err)
	}
	return maxPos.Float64, maxPos.Valid, nil
}

// UpdateContent implements store.TodoStore.UpdateContent
func (s *PostgresTodoStore) UpdateContent(ctx context.Context, todo *domain.Todo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := todo.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET text = $1, completed = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5`,
		todo.Text, todo.Completed, todo.UpdatedAt, todo.ID, todo.OwnerID,
	)
	if err != nil {
		log.Error("failed to update todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", todo.ID.String()))
		return MapError("todo", "update", err)
	}

	return CheckRowsAffected(result, store.ErrTodoNotFound)
}

// UpdatePosition implements store.TodoStore.UpdatePosition
func (s *PostgresTodoStore) UpdatePosition(ctx context.Context, id, ownerID uuid.UUID, position float64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE todos SET position = $1 WHERE id = $2 AND owner_id = $3`,
		position, id, ownerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update todo position",
			slog.String("error", err.Error()),
			slog.String("todo_id", id.String()))
		return MapError("todo", "update_position", err)
	}

	return CheckRowsAffected(result, store.ErrTodoNotFound)
}

// Delete implements store.TodoStore.Delete
func (s *PostgresTodoStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete todo",
			slog.String("error", err.Error()),
			slog.String("todo_id", id.String()))
		return MapError("todo", "delete", err)
	}

	return CheckRowsAffected(result, store.ErrTodoNotFound)
}

// LockOwner implements store.TodoStore.LockOwner by taking a row lock on the
// owner's user record. Concurrent writers for the same owner queue here
// until the holding transaction commits or rolls back.
func (s *PostgresTodoStore) LockOwner(ctx context.Context, ownerID uuid.UUID) error {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, ownerID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrUserNotFound
		}
		return MapError("todo", "lock_owner", err)
	}
	return nil
}
