package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// NewStores builds every store on top of db, which may be a pool or a
// transaction.
func NewStores(db store.DBTX) store.Stores {
	return store.Stores{
		Accounts:  NewPostgresAccountStore(db),
		Verses:    NewPostgresVerseStore(db),
		VerseSets: NewPostgresVerseSetStore(db),
		Learning:  NewPostgresLearningStore(db),
		Scores:    NewPostgresScoreStore(db),
		Awards:    NewPostgresAwardStore(db),
		Events:    NewPostgresEventStore(db),
		Groups:    NewPostgresGroupStore(db),
		Comments:  NewPostgresCommentStore(db),
		Pages:     NewPostgresPageStore(db),
		Payments:  NewPostgresPaymentStore(db),
	}
}

// UnitOfWork implements store.UnitOfWork with database transactions.
type UnitOfWork struct {
	db     *sqlx.DB
	stores store.Stores
}

// NewUnitOfWork creates a unit of work backed by db.
func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db, stores: NewStores(db)}
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

// Stores returns stores that run outside any transaction.
func (u *UnitOfWork) Stores() store.Stores {
	return u.stores
}

// Do runs fn with stores bound to a single transaction, committing when fn
// returns nil and rolling back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	return store.RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, NewStores(tx))
	})
}
