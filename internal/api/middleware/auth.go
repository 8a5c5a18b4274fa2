// Package middleware contains the HTTP middleware that runs in front of the
// todo handlers: tracing, the authentication gate, rate limiting and CORS.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vincentyap91/todolist/internal/api/shared"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/presence"
	"github.com/vincentyap91/todolist/internal/redact"
	"github.com/vincentyap91/todolist/internal/service/auth"
	"github.com/vincentyap91/todolist/internal/store"
)

// AuthMiddleware resolves the bearer token to a user and admits only users
// allowed to access the API.
type AuthMiddleware struct {
	jwtService auth.JWTService
	users      store.UserStore
	presence   presence.Tracker
}

// NewAuthMiddleware creates a new AuthMiddleware. tracker may be nil.
func NewAuthMiddleware(jwtService auth.JWTService, users store.UserStore, tracker presence.Tracker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
		presence:   tracker,
	}
}

// Authenticate validates the Authorization header, loads the user, rejects
// pending non-admin accounts and stores the user in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if store.IsNotFoundError(err) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		if !user.CanAccess() {
			shared.RespondWithError(w, r, http.StatusForbidden, "Account is not active")
			return
		}

		log := logger.FromContext(ctx).With(slog.String("user_id", user.ID.String()))
		if m.presence != nil {
			if err := m.presence.Touch(ctx, user.ID); err != nil {
				log.Warn("failed to record presence", redact.ErrorAttr(err))
			}
		}

		ctx = shared.WithUser(ctx, user)
		ctx = logger.WithLogger(ctx, log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
