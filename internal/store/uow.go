package store

import (
	"context"
)

// Stores groups every store so services can use them together, inside or
// outside a transaction.
type Stores struct {
	Accounts  AccountStore
	Verses    VerseStore
	VerseSets VerseSetStore
	Learning  LearningStore
	Scores    ScoreStore
	Awards    AwardStore
	Events    EventStore
	Groups    GroupStore
	Comments  CommentStore
	Pages     PageStore
	Payments  PaymentStore
}

// UnitOfWork runs functions against a set of stores sharing one transaction.
type UnitOfWork interface {
	// Stores returns stores bound to the underlying connection pool.
	Stores() Stores

	// Do runs fn with stores bound to a new transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
