package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/api/shared"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/logger"
	"github.com/vincentyap91/todolist/internal/presence"
	"github.com/vincentyap91/todolist/internal/ratelimit"
	"github.com/vincentyap91/todolist/internal/service/auth"
	"github.com/vincentyap91/todolist/internal/store"
)

// userStoreStub serves users from a map.
type userStoreStub struct {
	users map[uuid.UUID]*domain.User
	err   error
}

func (s *userStoreStub) Create(context.Context, *domain.User) error { return errors.New("not implemented") }

func (s *userStoreStub) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (s *userStoreStub) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (s *userStoreStub) UpdateStatus(context.Context, uuid.UUID, domain.UserStatus) error {
	return errors.New("not implemented")
}

func (s *userStoreStub) WithTx(*sql.Tx) store.UserStore { return s }

func newUser(role domain.UserRole, status domain.UserStatus) *domain.User {
	return &domain.User{ID: uuid.New(), Username: "u", HashedPassword: "h", Role: role, Status: status}
}

func okHandler(t *testing.T, wantUser *domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUser.ID, user.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	active := newUser(domain.RoleUser, domain.StatusActive)
	pending := newUser(domain.RoleUser, domain.StatusPending)
	pendingAdmin := newUser(domain.RoleAdmin, domain.StatusPending)
	users := &userStoreStub{users: map[uuid.UUID]*domain.User{
		active.ID:       active,
		pending.ID:      pending,
		pendingAdmin.ID: pendingAdmin,
	}}

	jwtFor := func(claims *auth.Claims, err error) *auth.MockJWTService {
		return &auth.MockJWTService{Claims: claims, ValidationError: err}
	}

	tests := []struct {
		name       string
		header     string
		jwt        *auth.MockJWTService
		users      store.UserStore
		wantStatus int
		wantUser   *domain.User
	}{
		{
			name:       "active user",
			header:     "Bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: active.ID}, nil),
			wantStatus: http.StatusOK,
			wantUser:   active,
		},
		{
			name:       "lowercase scheme",
			header:     "bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: active.ID}, nil),
			wantStatus: http.StatusOK,
			wantUser:   active,
		},
		{
			name:       "pending admin admitted",
			header:     "Bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: pendingAdmin.ID}, nil),
			wantStatus: http.StatusOK,
			wantUser:   pendingAdmin,
		},
		{
			name:       "pending user forbidden",
			header:     "Bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: pending.ID}, nil),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing header",
			jwt:        jwtFor(nil, nil),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			jwt:        jwtFor(nil, nil),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer old",
			jwt:        jwtFor(nil, auth.ErrExpiredToken),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid",
			header:     "Bearer junk",
			jwt:        jwtFor(nil, auth.ErrInvalidToken),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unexpected validation failure",
			header:     "Bearer junk",
			jwt:        jwtFor(nil, errors.New("boom")),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "deleted user",
			header:     "Bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: uuid.New()}, nil),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user store failure",
			header:     "Bearer good",
			jwt:        jwtFor(&auth.Claims{UserID: active.ID}, nil),
			users:      &userStoreStub{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userStore := tt.users
			if userStore == nil {
				userStore = users
			}
			tracker := presence.NewMemoryTracker(time.Minute)
			mw := NewAuthMiddleware(tt.jwt, userStore, tracker)

			req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			var next http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("next handler must not run")
			})
			if tt.wantUser != nil {
				next = okHandler(t, tt.wantUser)
			}
			mw.Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			online, err := tracker.Online(context.Background())
			require.NoError(t, err)
			if tt.wantUser != nil {
				assert.Equal(t, []uuid.UUID{tt.wantUser.ID}, online)
			} else {
				assert.Empty(t, online)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	base, buf := logger.NewTestLogger()
	var seen string
	handler := TraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotEmpty(t, seen)
	entries := buf.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, seen, entries[0]["trace_id"])
	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.Equal(t, float64(http.StatusTeapot), entries[1]["status"])
}

func TestTraceMiddleware_ReusesRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := chimiddleware.RequestID(TraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		assert.Equal(t, chimiddleware.GetReqID(r.Context()), seen)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, seen)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 0.001, Burst: 2, CleanupInterval: time.Hour})
	t.Cleanup(limiter.Stop)

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string, user *domain.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		req.RemoteAddr = remote
		if user != nil {
			req = req.WithContext(shared.WithUser(req.Context(), user))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000", nil).Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:2000", nil).Code)

	limited := do("10.0.0.1:3000", nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &resp))
	assert.Equal(t, "Too many requests", resp.Error)

	// principals are keyed separately from addresses
	user := newUser(domain.RoleUser, domain.StatusActive)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:4000", user).Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000", nil).Code)
}
