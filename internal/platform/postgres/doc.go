// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, together with the
// embedded goose migrations for the PostgreSQL schema.
//
// Connections go through database/sql using the pgx stdlib driver. Errors are
// translated to store sentinels with MapError.
package postgres
