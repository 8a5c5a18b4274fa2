package api

import (
	"log/slog"
	"net/http"

	"github.com/vincentyap91/todolist/internal/api/shared"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/service"
)

// TodoHandler serves the caller's ordered todo list.
type TodoHandler struct {
	todoService service.TodoService
	logger      *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService service.TodoService, logger *slog.Logger) *TodoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoHandler{
		todoService: todoService,
		logger:      logger.With(slog.String("component", "todo_handler")),
	}
}

// ListTodos handles GET /api/todos.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	todos, err := h.todoService.List(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list todos")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTodoResponses(todos))
}

// CreateTodo handles POST /api/todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	todo, err := h.todoService.Create(r.Context(), user.ID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create todo")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, toTodoResponse(todo))
}

// UpdateTodo handles PUT /api/todos/{id}.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, todoID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	todo, err := h.todoService.Update(r.Context(), user.ID, todoID, service.UpdateTodoParams{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update todo")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTodoResponse(todo))
}

// DeleteTodo handles DELETE /api/todos/{id}.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, todoID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.todoService.Delete(r.Context(), user.ID, todoID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderTodos handles POST /api/todos/reorder.
func (h *TodoHandler) ReorderTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	todos, err := h.todoService.Reorder(r.Context(), user.ID, req.TodoIDs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reorder todos")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTodoResponses(todos))
}

// MoveTodo handles POST /api/todos/{id}/move.
func (h *TodoHandler) MoveTodo(w http.ResponseWriter, r *http.Request) {
	user, todoID, ok := handlePrincipalAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req MoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	todos, err := h.todoService.Move(r.Context(), user.ID, todoID, *req.Index)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move todo")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTodoResponses(todos))
}

// RebalanceTodos handles POST /api/todos/rebalance.
func (h *TodoHandler) RebalanceTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	todos, err := h.todoService.Rebalance(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rebalance todos")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toTodoResponses(todos))
}

// Diagnostics handles GET /api/debug/todos.
func (h *TodoHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	diag, err := h.todoService.Diagnostics(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load diagnostics")
		return
	}

	if !diag.InSync {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("display order differs from creation order",
			slog.String("owner_id", user.ID.String()),
			slog.Int("count", diag.Count))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toDiagnosticsResponse(diag))
}
