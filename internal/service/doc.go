// Package service contains the application use cases. It orchestrates
// domain objects and the repositories defined in internal/store, and it owns
// the transaction boundary: every public operation runs inside a single
// store.RunInTransaction call.
//
// TodoService keeps each owner's list in a total order. Positions come from
// internal/domain/ordering; a relocation that runs out of numeric room
// between two neighbours triggers a rebalance inside the same transaction and
// is retried once.
//
// Errors returned to callers are either sentinels (store.ErrTodoNotFound,
// ErrReorderSetMismatch), domain validation errors, or a *TodoServiceError
// wrapping ErrPersistence.
package service
