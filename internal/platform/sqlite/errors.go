package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/vincentyap91/todolist/internal/store"
)

// MapError maps a go-sqlite3 error to a *store.StoreError wrapping the
// matching store sentinel.
func MapError(entity, operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.NewStoreError(entity, operation, "not found",
			fmt.Errorf("%w: %v", store.ErrNotFound, err))
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return store.NewStoreError(entity, operation, "duplicate",
				fmt.Errorf("%w: %v", store.ErrDuplicate, err))
		case sqlite3.ErrConstraintForeignKey,
			sqlite3.ErrConstraintCheck,
			sqlite3.ErrConstraintNotNull:
			return store.NewStoreError(entity, operation, "constraint violation",
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		}
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return store.NewStoreError(entity, operation, "database locked",
				fmt.Errorf("%w: %v", store.ErrTransactionFailed, err))
		}
	}

	return store.NewStoreError(entity, operation, "query failed", err)
}

// IsUniqueViolation reports a UNIQUE or PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// IsForeignKeyViolation reports a FOREIGN KEY constraint failure.
func IsForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func checkRowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
