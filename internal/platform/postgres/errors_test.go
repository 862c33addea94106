package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"username taken", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "accounts_username_key"}, store.ErrUsernameExists},
		{"email taken", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "accounts_email_key"}, store.ErrEmailExists},
		{"slug taken", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "verse_sets_slug_key"}, store.ErrSlugExists},
		{"page url taken", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "pages_url_key"}, store.ErrSlugExists},
		{"duplicate txn", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "payments_txn_id_key"}, store.ErrTxnExists},
		{"other unique", &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "whatever"}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode}, store.ErrInvalidEntity},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tt.err), tt.want)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, other, MapError(other))
}

func TestMapGetError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, store.ErrGroupNotFound, mapGetError(sql.ErrNoRows, store.ErrGroupNotFound))
	assert.ErrorIs(t, mapGetError(&pgconn.PgError{Code: uniqueViolationCode}, store.ErrGroupNotFound), store.ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: uniqueViolationCode})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: foreignKeyViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrPageNotFound))
	assert.Equal(t, store.ErrPageNotFound, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrPageNotFound))
	assert.Error(t, CheckRowsAffected(nil, store.ErrPageNotFound))

	failing := sqlmock.NewErrorResult(errors.New("no count"))
	err := CheckRowsAffected(failing, store.ErrPageNotFound)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrPageNotFound)
}
