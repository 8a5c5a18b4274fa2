package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vincentyap91/todolist/internal/domain"
	"github.com/vincentyap91/todolist/internal/platform/logger"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	id := GetTraceID(traced)
	assert.NotEmpty(t, id)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(ctx)))
	assert.Empty(t, GetTraceID(ctx), "original context unchanged")

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
	assert.Equal(t, "abc", GetTraceID(WithTraceID(ctx, "abc")))
}

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserFromContext(WithUser(context.Background(), &domain.User{}))
	assert.False(t, ok, "zero ID is not a principal")

	user := &domain.User{ID: uuid.New()}
	got, ok := UserFromContext(WithUser(context.Background(), user))
	require.True(t, ok)
	assert.Same(t, user, got)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Text string `json:"text" validate:"required"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"text":"hi"}`},
		{name: "unknown fields ignored", body: `{"text":"hi","extra":1}`},
		{name: "malformed", body: `{"text":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "trailing value", body: `{"text":"a"}{"text":"b"}`, wantErr: true},
		{name: "wrong type", body: `{"text":5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "hi", p.Text)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("not ok")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type payload struct {
		Text string `validate:"required"`
	}
	assert.NoError(t, ValidateRequest(payload{Text: "x"}))
	assert.Error(t, ValidateRequest(payload{}))
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.Error(t, ValidateRequest(selfValidating{}))
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	ctx := WithTraceID(logger.WithLogger(context.Background(), log), "trace-1")
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("dial postgres://app:hunter2@db/todos: refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "An unexpected error occurred", resp.Error)
	assert.Equal(t, "trace-1", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "hunter2")

	entries := buf.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "ERROR", last["level"])
	assert.NotContains(t, last["error"], "hunter2")
}

func TestRespondWithError_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusBadRequest, "DEBUG"},
		{http.StatusTooManyRequests, "WARN"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		log, buf := logger.NewTestLogger()
		req := httptest.NewRequest(http.MethodGet, "/", nil).
			WithContext(logger.WithLogger(context.Background(), log))
		w := httptest.NewRecorder()

		RespondWithError(w, req, tt.status, "msg")

		assert.Equal(t, tt.status, w.Code)
		entries := buf.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, tt.level, entries[0]["level"])
	}
}
