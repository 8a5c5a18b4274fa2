package sqlite

import "embed"

// Migrations holds the goose SQL migrations for the SQLite schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the .sql files.
const MigrationsDir = "migrations"
