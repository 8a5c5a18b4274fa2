package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/service"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT used for API authorization
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateTodoRequest defines the payload for creating a todo.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// UpdateTodoRequest defines the payload for editing a todo. Omitted fields
// are left unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"      validate:"omitempty,max=1000"`
	Completed *bool   `json:"completed,omitempty"`
}

// Validate requires at least one field.
func (r UpdateTodoRequest) Validate() error {
	if r.Text == nil && r.Completed == nil {
		return domain.NewValidationError("", "text or completed is required", domain.ErrValidation)
	}
	if r.Text != nil && len(*r.Text) > 1000 {
		return domain.NewValidationError("text", "is too long", domain.ErrValidation)
	}
	return nil
}

// ReorderRequest carries the complete new order of the caller's todos.
type ReorderRequest struct {
	TodoIDs []uuid.UUID `json:"todoIds" validate:"required,min=1"`
}

// MoveRequest defines the destination slot for a single todo.
type MoveRequest struct {
	Index *int `json:"index" validate:"required"`
}

// TodoResponse is the wire form of a todo.
type TodoResponse struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Position  float64   `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DiagnosticsResponse lists the caller's todos in creation and display order.
type DiagnosticsResponse struct {
	Count      int            `json:"count"`
	ByID       []TodoResponse `json:"by_id"`
	ByPosition []TodoResponse `json:"by_position"`
	InSync     bool           `json:"in_sync"`
}

// PresenceResponse lists recently active users.
type PresenceResponse struct {
	Online []uuid.UUID `json:"online"`
}

func toTodoResponse(t *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Position:  t.Position,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// toTodoResponses never returns nil so empty lists encode as [].
func toTodoResponses(todos []*domain.Todo) []TodoResponse {
	out := make([]TodoResponse, len(todos))
	for i, t := range todos {
		out[i] = toTodoResponse(t)
	}
	return out
}

func toDiagnosticsResponse(d *service.Diagnostics) DiagnosticsResponse {
	return DiagnosticsResponse{
		Count:      d.Count,
		ByID:       toTodoResponses(d.ByID),
		ByPosition: toTodoResponses(d.ByPosition),
		InSync:     d.InSync,
	}
}
