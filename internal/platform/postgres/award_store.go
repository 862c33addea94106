package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// PostgresAwardStore implements store.AwardStore.
type PostgresAwardStore struct {
	db store.DBTX
}

// NewPostgresAwardStore creates a new award store.
func NewPostgresAwardStore(db store.DBTX) *PostgresAwardStore {
	return &PostgresAwardStore{db: db}
}

var _ store.AwardStore = (*PostgresAwardStore)(nil)

// Create inserts an award level. It reports false when the account already
// holds that level, which happens when two recomputations race.
func (s *PostgresAwardStore) Create(ctx context.Context, award *domain.Award) (bool, error) {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO awards (id, account_id, award_type, level, created)
		VALUES (:id, :account_id, :award_type, :level, :created)
		ON CONFLICT (account_id, award_type, level) DO NOTHING`, award)
	if err != nil {
		return false, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByAccount returns every award level held by the account.
func (s *PostgresAwardStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error) {
	var awards []*domain.Award
	err := sqlx.SelectContext(ctx, s.db, &awards, `
		SELECT id, account_id, award_type, level, created
		FROM awards WHERE account_id = $1
		ORDER BY award_type, level`, accountID)
	if err != nil {
		return nil, MapError(err)
	}
	return awards, nil
}
