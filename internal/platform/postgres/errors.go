package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vincentyap91/todolist/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	lockNotAvailableCode    = "55P03"
	serializationFailure    = "40001"
)

// MapError maps a database error to a *store.StoreError recording the entity
// and operation. Recognised failures wrap the matching store sentinel so
// callers can keep using errors.Is; anything else is wrapped as is.
func MapError(entity, operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.NewStoreError(entity, operation, "not found",
			fmt.Errorf("%w: %v", store.ErrNotFound, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return store.NewStoreError(entity, operation, "duplicate",
				fmt.Errorf("%w: %v", store.ErrDuplicate, err))
		case foreignKeyViolationCode:
			return store.NewStoreError(entity, operation,
				fmt.Sprintf("foreign key violation (%s)", pgErr.ConstraintName),
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		case checkViolationCode:
			return store.NewStoreError(entity, operation,
				fmt.Sprintf("check constraint violation (%s)", pgErr.ConstraintName),
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		case notNullViolationCode:
			return store.NewStoreError(entity, operation,
				fmt.Sprintf("not null violation (%s)", pgErr.ColumnName),
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		case lockNotAvailableCode, serializationFailure:
			return store.NewStoreError(entity, operation, "lock unavailable",
				fmt.Errorf("%w: %v", store.ErrTransactionFailed, err))
		}
	}

	return store.NewStoreError(entity, operation, "query failed", err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// IsForeignKeyViolation checks if the given error is a PostgreSQL foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected examines the number of rows affected by an UPDATE or
// DELETE and returns notFound when nothing matched. A nil notFound falls back
// to store.ErrNotFound.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
