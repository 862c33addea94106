package store

import (
	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by *sqlx.DB and *sqlx.Tx, so postgres stores run the same
// queries inside or outside a unit of work.
type DBTX interface {
	sqlx.ExtContext
	sqlx.PreparerContext
}
