// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, the embedded
// schema migrations, and the persistent task store used by the task runner.
// Every store takes a store.DBTX so the same code runs against a pool or
// inside a transaction opened by the UnitOfWork.
package postgres
