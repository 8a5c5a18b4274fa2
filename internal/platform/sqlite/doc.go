// Package sqlite provides SQLite implementations of the internal/store
// interfaces for single-node deployments, backed by mattn/go-sqlite3.
//
// A database opened with Open uses one connection and BEGIN IMMEDIATE
// transactions, so writers are serialised by SQLite's database lock.
package sqlite
