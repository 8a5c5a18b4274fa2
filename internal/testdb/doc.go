// Package testdb provides database helpers for tests.
//
// OpenSQLite gives every test its own migrated SQLite file, which is what the
// service and API tests run against. The PostgreSQL helpers in postgres.go
// are compiled only with the integration build tag and skip the test unless
// DATABASE_URL is set.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.OpenSQLite(t)
//	    users := sqlite.NewUserStore(db, nil)
//	    owner := testdb.MustCreateUser(t, users, "alice", domain.StatusActive)
//	    ...
//	}
package testdb
