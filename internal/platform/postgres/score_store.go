package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// PostgresScoreStore implements store.ScoreStore.
type PostgresScoreStore struct {
	db store.DBTX
}

// NewPostgresScoreStore creates a new score store.
func NewPostgresScoreStore(db store.DBTX) *PostgresScoreStore {
	return &PostgresScoreStore{db: db}
}

var _ store.ScoreStore = (*PostgresScoreStore)(nil)

// AddLog inserts a score log entry. It does not touch the account total.
func (s *PostgresScoreStore) AddLog(ctx context.Context, log *domain.ScoreLog) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO score_logs (id, account_id, points, reason, accuracy, created)
		VALUES (:id, :account_id, :points, :reason, :accuracy, :created)`, log)
	return MapError(err)
}

// Leaderboard ranks accounts by all-time total or by points logged since
// q.Since. Ranks are assigned in order, starting after the offset.
func (s *PostgresScoreStore) Leaderboard(ctx context.Context, q store.LeaderboardQuery) ([]*domain.LeaderboardEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 30
	}

	args := []any{limit, q.Offset}
	filter := ""
	if q.AccountIDs != nil {
		args = append(args, pq.Array(uuidStrings(q.AccountIDs)))
		filter = fmt.Sprintf(" AND a.id = ANY($%d::uuid[])", len(args))
	}

	var query string
	if q.Since.IsZero() {
		query = `
			SELECT a.id AS account_id, a.username, a.total_score AS points
			FROM accounts a
			WHERE a.is_active AND NOT a.is_hellbanned AND a.total_score > 0` + filter + `
			ORDER BY a.total_score DESC, a.username
			LIMIT $1 OFFSET $2`
	} else {
		args = append(args, q.Since.UTC())
		query = fmt.Sprintf(`
			SELECT a.id AS account_id, a.username, SUM(sl.points)::int AS points
			FROM score_logs sl
			JOIN accounts a ON a.id = sl.account_id
			WHERE a.is_active AND NOT a.is_hellbanned AND sl.created >= $%d`+filter+`
			GROUP BY a.id, a.username
			HAVING SUM(sl.points) > 0
			ORDER BY points DESC, a.username
			LIMIT $1 OFFSET $2`, len(args))
	}

	var entries []*domain.LeaderboardEntry
	if err := sqlx.SelectContext(ctx, s.db, &entries, query, args...); err != nil {
		return nil, MapError(err)
	}
	for i, e := range entries {
		e.Rank = q.Offset + i + 1
	}
	return entries, nil
}
