package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const statusColumns = `id, account_id, version_id, localized_reference, internal_reference,
	verse_set_id, text_order, memory_stage, strength, added, first_seen, last_tested,
	next_test_due, ignored, early_review_requested`

// PostgresLearningStore implements store.LearningStore.
type PostgresLearningStore struct {
	db store.DBTX
}

// NewPostgresLearningStore creates a new learning store.
func NewPostgresLearningStore(db store.DBTX) *PostgresLearningStore {
	return &PostgresLearningStore{db: db}
}

var _ store.LearningStore = (*PostgresLearningStore)(nil)

// Create inserts a status. A cancelled status for the same reference, version
// and verse set is reactivated with fresh progress, and status.ID is set to
// that row's id. It reports false when the account is still learning it.
func (s *PostgresLearningStore) Create(ctx context.Context, status *domain.UserVerseStatus) (bool, error) {
	rows, err := sqlx.NamedQueryContext(ctx, s.db, `
		INSERT INTO user_verse_statuses (`+statusColumns+`)
		VALUES (:id, :account_id, :version_id, :localized_reference, :internal_reference,
			:verse_set_id, :text_order, :memory_stage, :strength, :added, :first_seen, :last_tested,
			:next_test_due, :ignored, :early_review_requested)
		ON CONFLICT (account_id, version_id, internal_reference, verse_set_id) DO UPDATE SET
			localized_reference = EXCLUDED.localized_reference,
			text_order = EXCLUDED.text_order,
			memory_stage = EXCLUDED.memory_stage,
			strength = EXCLUDED.strength,
			added = EXCLUDED.added,
			first_seen = NULL,
			last_tested = NULL,
			next_test_due = NULL,
			ignored = FALSE,
			early_review_requested = FALSE
		WHERE user_verse_statuses.ignored
		RETURNING id`, status)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert verse status",
			"account_id", status.AccountID,
			"reference", status.InternalReference,
			"error", err)
		return false, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return false, MapError(rows.Err())
	}
	if err := rows.Scan(&status.ID); err != nil {
		return false, err
	}
	return true, rows.Err()
}

// GetByID retrieves a status by ID.
func (s *PostgresLearningStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserVerseStatus, error) {
	var st domain.UserVerseStatus
	err := sqlx.GetContext(ctx, s.db, &st,
		`SELECT `+statusColumns+` FROM user_verse_statuses WHERE id = $1`, id)
	if err != nil {
		return nil, mapGetError(err, store.ErrStatusNotFound)
	}
	return &st, nil
}

// ListMatching returns every non-ignored status the account holds for the
// reference in the version, across verse sets. Rows are locked so that
// concurrent tests of the same verse serialize.
func (s *PostgresLearningStore) ListMatching(ctx context.Context, accountID, versionID uuid.UUID, internalRef string) ([]*domain.UserVerseStatus, error) {
	var statuses []*domain.UserVerseStatus
	err := sqlx.SelectContext(ctx, s.db, &statuses, `
		SELECT `+statusColumns+`
		FROM user_verse_statuses
		WHERE account_id = $1 AND version_id = $2 AND internal_reference = $3 AND NOT ignored
		ORDER BY added, id
		FOR UPDATE`, accountID, versionID, internalRef)
	if err != nil {
		return nil, MapError(err)
	}
	return statuses, nil
}

// Update saves the learning state of a status.
func (s *PostgresLearningStore) Update(ctx context.Context, status *domain.UserVerseStatus) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE user_verse_statuses SET
			memory_stage = :memory_stage,
			strength = :strength,
			first_seen = :first_seen,
			last_tested = :last_tested,
			next_test_due = :next_test_due,
			ignored = :ignored,
			early_review_requested = :early_review_requested
		WHERE id = :id`, status)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrStatusNotFound)
}

// ReviewQueue returns one status per verse that is due for review, most
// overdue first.
func (s *PostgresLearningStore) ReviewQueue(ctx context.Context, accountID uuid.UUID, now time.Time, limit int) ([]*domain.UserVerseStatus, error) {
	var statuses []*domain.UserVerseStatus
	err := sqlx.SelectContext(ctx, s.db, &statuses, `
		SELECT * FROM (
			SELECT DISTINCT ON (version_id, internal_reference) `+statusColumns+`
			FROM user_verse_statuses
			WHERE account_id = $1
				AND memory_stage = $2
				AND NOT ignored
				AND (next_test_due <= $3 OR early_review_requested)
			ORDER BY version_id, internal_reference, next_test_due
		) due
		ORDER BY next_test_due, internal_reference
		LIMIT $4`, accountID, int(domain.MemoryStageTested), now.UTC(), queueLimit(limit))
	if err != nil {
		return nil, MapError(err)
	}
	return statuses, nil
}

// NewQueue returns one status per verse not yet tested, in verse set and
// text order.
func (s *PostgresLearningStore) NewQueue(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.UserVerseStatus, error) {
	var statuses []*domain.UserVerseStatus
	err := sqlx.SelectContext(ctx, s.db, &statuses, `
		SELECT * FROM (
			SELECT DISTINCT ON (version_id, internal_reference) `+statusColumns+`
			FROM user_verse_statuses
			WHERE account_id = $1 AND memory_stage < $2 AND NOT ignored
			ORDER BY version_id, internal_reference, added
		) fresh
		ORDER BY verse_set_id NULLS LAST, text_order, added
		LIMIT $3`, accountID, int(domain.MemoryStageTested), queueLimit(limit))
	if err != nil {
		return nil, MapError(err)
	}
	return statuses, nil
}

// Progress counts distinct verses by learning state.
func (s *PostgresLearningStore) Progress(ctx context.Context, accountID uuid.UUID, now time.Time, learntThreshold float64) (*domain.LearningProgress, error) {
	var p domain.LearningProgress
	err := sqlx.GetContext(ctx, s.db, &p, `
		SELECT
			COUNT(DISTINCT (version_id, internal_reference)) AS started,
			COUNT(DISTINCT (version_id, internal_reference)) FILTER (WHERE memory_stage = $2) AS tested,
			COUNT(DISTINCT (version_id, internal_reference)) FILTER (WHERE memory_stage = $2 AND strength >= $3) AS learnt,
			COUNT(DISTINCT (version_id, internal_reference)) FILTER (WHERE memory_stage = $2 AND next_test_due <= $4) AS due
		FROM user_verse_statuses
		WHERE account_id = $1 AND NOT ignored`,
		accountID, int(domain.MemoryStageTested), learntThreshold, now.UTC())
	if err != nil {
		return nil, MapError(err)
	}
	return &p, nil
}

// RecordTest stores a test in the account's history.
func (s *PostgresLearningStore) RecordTest(ctx context.Context, record *domain.TestRecord) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO verse_tests (id, account_id, status_id, accuracy, created)
		VALUES (:id, :account_id, :status_id, :accuracy, :created)`, record)
	return MapError(err)
}

// ConsecutivePerfectTests counts the account's perfect tests since its most
// recent imperfect one.
func (s *PostgresLearningStore) ConsecutivePerfectTests(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, `
		SELECT COUNT(*)
		FROM verse_tests
		WHERE account_id = $1
			AND accuracy >= 1
			AND created > COALESCE(
				(SELECT MAX(created) FROM verse_tests WHERE account_id = $1 AND accuracy < 1),
				'-infinity'::timestamptz)`, accountID)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// DistinctTestHours counts the distinct hours of the day, in UTC, at which
// the account has taken tests.
func (s *PostgresLearningStore) DistinctTestHours(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, `
		SELECT COUNT(DISTINCT EXTRACT(HOUR FROM created AT TIME ZONE 'UTC'))
		FROM verse_tests WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// DistinctTestDays counts the distinct UTC days since the given time on which
// the account has taken tests.
func (s *PostgresLearningStore) DistinctTestDays(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, `
		SELECT COUNT(DISTINCT (created AT TIME ZONE 'UTC')::date)
		FROM verse_tests WHERE account_id = $1 AND created >= $2`, accountID, since.UTC())
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

func queueLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
