package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/vincentyap91/todolist/internal/config"
	"github.com/vincentyap91/todolist/internal/platform/postgres"
	"github.com/vincentyap91/todolist/internal/platform/sqlite"
	"github.com/vincentyap91/todolist/internal/store"
)

// stores groups the persistence implementations for the configured driver.
type stores struct {
	todos store.TodoStore
	users store.UserStore
}

// setupAppDatabase opens and pings the configured database. PostgreSQL gets
// the configured pool; SQLite always runs on a single connection.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(pingCtx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		logger.Info("Database connection established", slog.String("driver", cfg.Driver))
		return db, nil

	case "postgres":
		db, err := sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		logger.Info("Database connection established",
			slog.String("driver", cfg.Driver),
			slog.String("url", maskDatabaseURL(cfg.URL)))
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newStores builds the stores for driver on db.
func newStores(driver string, db *sql.DB, logger *slog.Logger) (stores, error) {
	switch driver {
	case "sqlite":
		return stores{
			todos: sqlite.NewTodoStore(db, logger),
			users: sqlite.NewUserStore(db, logger),
		}, nil
	case "postgres":
		return stores{
			todos: postgres.NewPostgresTodoStore(db, logger),
			users: postgres.NewPostgresUserStore(db, logger),
		}, nil
	default:
		return stores{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	return parsedURL.Redacted()
}
