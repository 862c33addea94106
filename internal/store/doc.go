// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Services reach the stores through a UnitOfWork so that multi-step
// operations (recording a test and its points, moving a page subtree)
// commit atomically.
package store
