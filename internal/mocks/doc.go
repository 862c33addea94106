// Package mocks provides shared test doubles for the service and API layers.
//
// Stores is an in-memory implementation of every store interface backed by a
// single mutex-guarded MemoryDB, so services can be exercised end to end
// without a database:
//
//	db := mocks.NewMemoryDB()
//	uow := mocks.NewUnitOfWork(db)
//	svc := service.NewAccountService(uow, ...)
//
// The remaining mocks use function fields (MockJWTService) or testify/mock
// (MockMailer, MockReporter) depending on how much call inspection tests need.
package mocks
