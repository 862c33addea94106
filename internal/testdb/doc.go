//go:build integration

// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test
// completes, so they can share one migrated database and run in parallel:
//
//	func TestSomething(t *testing.T) {
//		t.Parallel()
//		db := testdb.GetTestDB(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//			stores := postgres.NewStores(tx)
//			// ...
//		})
//	}
//
// Tests are skipped when DATABASE_URL is not set.
package testdb
