package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/domain/ordering"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/store"
)

// UpdateTodoParams carries a partial edit. Nil fields are left unchanged.
type UpdateTodoParams struct {
	Text      *string
	Completed *bool
}

// Diagnostics is a read-only view of one owner's list in both creation and
// display order.
type Diagnostics struct {
	Count      int
	ByID       []*domain.Todo
	ByPosition []*domain.Todo
	// InSync reports whether creation order and display order agree.
	InSync bool
}

// TodoService provides the ordered todo list operations for one owner at a time.
// Every method runs in its own transaction; list results are always re-read
// after the write so callers get the committed order.
type TodoService interface {
	// List returns the owner's todos in display order.
	List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error)

	// Create appends a todo after every existing one.
	Create(ctx context.Context, ownerID uuid.UUID, text string) (*domain.Todo, error)

	// Update edits text and/or completion. Position is never changed.
	Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateTodoParams) (*domain.Todo, error)

	// Delete removes a todo without renumbering the others.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// Move relocates a single todo so it ends up at index in the list.
	// index is clamped to the list bounds.
	Move(ctx context.Context, ownerID, id uuid.UUID, index int) ([]*domain.Todo, error)

	// Reorder replaces the whole order with ids, which must be exactly the
	// owner's current set of todos.
	Reorder(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Todo, error)

	// Rebalance respaces the owner's positions without changing their order.
	Rebalance(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error)

	// Diagnostics reports creation order against display order.
	Diagnostics(ctx context.Context, ownerID uuid.UUID) (*Diagnostics, error)
}

// todoServiceImpl implements the TodoService interface
type todoServiceImpl struct {
	todoRepo TodoRepository
	logger   *slog.Logger
}

// NewTodoService creates a new TodoService.
// It returns an error if the repository is nil.
func NewTodoService(todoRepo TodoRepository, logger *slog.Logger) (TodoService, error) {
	if todoRepo == nil {
		return nil, domain.NewValidationError("todoRepo", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &todoServiceImpl{
		todoRepo: todoRepo,
		logger:   logger.With(slog.String("component", "todo_service")),
	}, nil
}

// inTx runs fn in a transaction with a transactional store and classifies
// the resulting error for operation.
func (s *todoServiceImpl) inTx(
	ctx context.Context,
	operation string,
	fn func(ctx context.Context, todos store.TodoStore) error,
) error {
	err := store.RunInTransaction(ctx, s.todoRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.todoRepo.WithTx(tx))
	})
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		err = classify(operation, err)
		var serviceErr *TodoServiceError
		if errors.As(err, &serviceErr) {
			log.Error("todo operation failed",
				slog.String("operation", operation),
				slog.String("error", err.Error()))
		} else {
			log.Debug("todo operation rejected",
				slog.String("operation", operation),
				slog.String("error", err.Error()))
		}
	}
	return err
}

// List implements TodoService.List
func (s *todoServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	err := s.inTx(ctx, "list", func(ctx context.Context, txTodos store.TodoStore) error {
		var err error
		todos, err = txTodos.ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Create implements TodoService.Create
func (s *todoServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, text string) (*domain.Todo, error) {
	// validate before opening a transaction
	if _, err := domain.NewTodo(ownerID, text, 0); err != nil {
		return nil, err
	}

	var created *domain.Todo
	err := s.inTx(ctx, "create", func(ctx context.Context, txTodos store.TodoStore) error {
		if err := txTodos.LockOwner(ctx, ownerID); err != nil {
			return err
		}

		maxPos, hasAny, err := txTodos.MaxPosition(ctx, ownerID)
		if err != nil {
			return err
		}

		todo, err := domain.NewTodo(ownerID, text, ordering.Append(maxPos, hasAny))
		if err != nil {
			return err
		}
		if err := txTodos.Create(ctx, todo); err != nil {
			return err
		}

		created = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("todo created",
		slog.String("todo_id", created.ID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.Float64("position", created.Position))
	return created, nil
}

// Update implements TodoService.Update
func (s *todoServiceImpl) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	params UpdateTodoParams,
) (*domain.Todo, error) {
	var updated *domain.Todo
	err := s.inTx(ctx, "update", func(ctx context.Context, txTodos store.TodoStore) error {
		todo, err := txTodos.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if err := todo.ApplyEdit(params.Text, params.Completed); err != nil {
			return err
		}
		if err := txTodos.UpdateContent(ctx, todo); err != nil {
			return err
		}
		updated = todo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements TodoService.Delete
func (s *todoServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.inTx(ctx, "delete", func(ctx context.Context, txTodos store.TodoStore) error {
		return txTodos.Delete(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("todo deleted",
		slog.String("todo_id", id.String()),
		slog.String("owner_id", ownerID.String()))
	return nil
}

// Move implements TodoService.Move
func (s *todoServiceImpl) Move(
	ctx context.Context,
	ownerID, id uuid.UUID,
	index int,
) ([]*domain.Todo, error) {
	var result []*domain.Todo
	err := s.inTx(ctx, "move", func(ctx context.Context, txTodos store.TodoStore) error {
		if err := txTodos.LockOwner(ctx, ownerID); err != nil {
			return err
		}

		todos, err := txTodos.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		current := indexOf(todos, id)
		if current < 0 {
			return store.ErrTodoNotFound
		}

		target := clamp(index, 0, len(todos)-1)
		if target == current {
			result = todos
			return nil
		}

		pos, err := ordering.Between(neighbours(todos, current, target))
		if errors.Is(err, ordering.ErrResolutionExhausted) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("position resolution exhausted, rebalancing",
				slog.String("owner_id", ownerID.String()),
				slog.String("todo_id", id.String()))

			if todos, err = rebalance(ctx, txTodos, ownerID); err != nil {
				return err
			}
			pos, err = ordering.Between(neighbours(todos, current, target))
		}
		if err != nil {
			return fmt.Errorf("assign position: %w", err)
		}

		if err := txTodos.UpdatePosition(ctx, id, ownerID, pos); err != nil {
			return err
		}

		result, err = txTodos.ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reorder implements TodoService.Reorder
func (s *todoServiceImpl) Reorder(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]*domain.Todo, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("todoIds", "cannot be empty", ErrInvalidReorder)
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidationError("todoIds", "cannot contain duplicates", ErrInvalidReorder)
		}
		seen[id] = struct{}{}
	}

	var result []*domain.Todo
	err := s.inTx(ctx, "reorder", func(ctx context.Context, txTodos store.TodoStore) error {
		if err := txTodos.LockOwner(ctx, ownerID); err != nil {
			return err
		}

		todos, err := txTodos.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}

		if len(todos) != len(seen) {
			return ErrReorderSetMismatch
		}
		for _, t := range todos {
			if _, ok := seen[t.ID]; !ok {
				return ErrReorderSetMismatch
			}
		}

		for i, pos := range ordering.Dense(len(ids)) {
			if err := txTodos.UpdatePosition(ctx, ids[i], ownerID, pos); err != nil {
				return err
			}
		}

		result, err = txTodos.ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("todos reordered",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(ids)))
	return result, nil
}

// Rebalance implements TodoService.Rebalance
func (s *todoServiceImpl) Rebalance(ctx context.Context, ownerID uuid.UUID) ([]*domain.Todo, error) {
	var result []*domain.Todo
	err := s.inTx(ctx, "rebalance", func(ctx context.Context, txTodos store.TodoStore) error {
		if err := txTodos.LockOwner(ctx, ownerID); err != nil {
			return err
		}
		var err error
		result, err = rebalance(ctx, txTodos, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("todos rebalanced",
		slog.String("owner_id", ownerID.String()),
		slog.Int("count", len(result)))
	return result, nil
}

// Diagnostics implements TodoService.Diagnostics
func (s *todoServiceImpl) Diagnostics(ctx context.Context, ownerID uuid.UUID) (*Diagnostics, error) {
	var diag Diagnostics
	err := s.inTx(ctx, "diagnostics", func(ctx context.Context, txTodos store.TodoStore) error {
		var err error
		if diag.ByPosition, err = txTodos.ListByOwner(ctx, ownerID); err != nil {
			return err
		}
		diag.ByID, err = txTodos.ListByOwnerByID(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	diag.Count = len(diag.ByPosition)
	diag.InSync = sameOrder(diag.ByID, diag.ByPosition)
	return &diag, nil
}

// rebalance rewrites every position of ownerID to the spaced sequence in
// current display order and returns the list with the new positions.
func rebalance(ctx context.Context, todos store.TodoStore, ownerID uuid.UUID) ([]*domain.Todo, error) {
	list, err := todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for i, pos := range ordering.Spaced(len(list)) {
		if err := todos.UpdatePosition(ctx, list[i].ID, ownerID, pos); err != nil {
			return nil, err
		}
		list[i].Position = pos
	}
	return list, nil
}

// neighbours returns the positions surrounding slot target once the todo at
// index current has been taken out of list. nil marks a list end.
func neighbours(list []*domain.Todo, current, target int) (prev, next *float64) {
	rest := make([]*domain.Todo, 0, len(list)-1)
	rest = append(rest, list[:current]...)
	rest = append(rest, list[current+1:]...)

	if target > 0 {
		p := rest[target-1].Position
		prev = &p
	}
	if target < len(rest) {
		n := rest[target].Position
		next = &n
	}
	return prev, next
}

func indexOf(list []*domain.Todo, id uuid.UUID) int {
	for i, t := range list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sameOrder(a, b []*domain.Todo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
