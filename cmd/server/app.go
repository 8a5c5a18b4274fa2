package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vincentyap91/todolist/internal/config"
	"github.com/vincentyap91/todolist/internal/presence"
	"github.com/vincentyap91/todolist/internal/ratelimit"
	"github.com/vincentyap91/todolist/internal/redact"
	"github.com/vincentyap91/todolist/internal/service"
	"github.com/vincentyap91/todolist/internal/service/auth"
	"github.com/vincentyap91/todolist/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	todoStore store.TodoStore

	jwtService  auth.JWTService
	passwords   *auth.BcryptVerifier
	todoService service.TodoService
	userService service.UserService

	presence      presence.Tracker
	closePresence func() error
	limiter       *ratelimit.Limiter
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be open; cleanup closes it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	st, err := newStores(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}
	app.userStore = st.users
	app.todoStore = st.todos

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwords = auth.NewBcryptVerifier(cfg.Auth.BCryptCost)

	app.todoService, err = service.NewTodoService(service.NewTodoRepositoryAdapter(app.todoStore, db), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create todo service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, app.passwords, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	if err := app.setupPresence(ctx); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		app.limiter = ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			CleanupInterval:   time.Duration(cfg.RateLimit.CleanupIntervalSeconds) * time.Second,
		})
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupPresence uses Redis when a URL is configured and process memory otherwise.
func (app *application) setupPresence(ctx context.Context) error {
	ttl := time.Duration(app.config.Presence.TTLSeconds) * time.Second

	if app.config.Presence.RedisURL == "" {
		app.presence = presence.NewMemoryTracker(ttl)
		app.logger.Info("Presence tracking in memory")
		return nil
	}

	tracker, err := presence.Connect(ctx, app.config.Presence.RedisURL, ttl)
	if err != nil {
		return fmt.Errorf("failed to connect presence store: %w", err)
	}
	app.presence = tracker
	app.closePresence = tracker.Close
	app.logger.Info("Presence tracking in redis")
	return nil
}

// Run starts the HTTP server and blocks until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.limiter != nil {
		app.limiter.Stop()
	}

	if app.closePresence != nil {
		if err := app.closePresence(); err != nil {
			app.logger.Error("Error closing presence store", redact.ErrorAttr(err))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", redact.ErrorAttr(err))
		}
	}

	app.logger.Info("Application shutdown completed")
}
