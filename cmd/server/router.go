package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vincentyap91/todolist/internal/api"
	apiMiddleware "github.com/vincentyap91/todolist/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userStore, app.presence)
	todoHandler := api.NewTodoHandler(app.todoService, app.logger)
	presenceHandler := api.NewPresenceHandler(app.presence)

	limit := func(r chi.Router) {
		if app.limiter != nil {
			r.Use(apiMiddleware.RateLimit(app.limiter))
		}
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes, limited per client address
		r.Group(func(r chi.Router) {
			limit(r)
			r.Post("/auth/login", authHandler.Login)
		})

		// Protected routes, limited per principal
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			limit(r)

			r.Get("/todos", todoHandler.ListTodos)
			r.Post("/todos", todoHandler.CreateTodo)
			r.Post("/todos/reorder", todoHandler.ReorderTodos)
			r.Post("/todos/rebalance", todoHandler.RebalanceTodos)
			r.Put("/todos/{id}", todoHandler.UpdateTodo)
			r.Delete("/todos/{id}", todoHandler.DeleteTodo)
			r.Post("/todos/{id}/move", todoHandler.MoveTodo)

			r.Get("/debug/todos", todoHandler.Diagnostics)
			r.Get("/presence", presenceHandler.ListOnline)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
