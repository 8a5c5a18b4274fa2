package service

import (
	"database/sql"

	"github.com/vincentyap91/todolist/internal/store"
)

// TodoRepository is the store the todo service works against, plus access to
// the connection pool it opens transactions on.
type TodoRepository interface {
	store.TodoStore

	// DB returns the underlying database connection
	DB() *sql.DB
}

// TodoRepositoryAdapter pairs a store.TodoStore with the *sql.DB it was built on.
type TodoRepositoryAdapter struct {
	store.TodoStore
	db *sql.DB
}

// NewTodoRepositoryAdapter creates a new TodoRepository.
func NewTodoRepositoryAdapter(todoStore store.TodoStore, db *sql.DB) TodoRepository {
	return &TodoRepositoryAdapter{
		TodoStore: todoStore,
		db:        db,
	}
}

// DB implements TodoRepository.DB
func (a *TodoRepositoryAdapter) DB() *sql.DB {
	return a.db
}
