package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vincentyap91/todolist/internal/api/shared"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/presence"
)

// PresenceHandler exposes the set of recently active users to admins.
type PresenceHandler struct {
	tracker presence.Tracker
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(tracker presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// ListOnline handles GET /api/presence.
func (h *PresenceHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	user, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if user.Role != domain.RoleAdmin {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	online, err := h.tracker.Online(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load presence")
		return
	}
	if online == nil {
		online = []uuid.UUID{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PresenceResponse{Online: online})
}
