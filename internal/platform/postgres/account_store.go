package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const accountColumns = `id, username, email, first_name, last_name, hashed_password,
	date_joined, last_login, is_active, is_moderator, is_hellbanned, enable_commenting,
	email_bounced, remind_after, remind_every, last_reminder_sent, total_score`

// PostgresAccountStore implements store.AccountStore.
type PostgresAccountStore struct {
	db store.DBTX
}

// NewPostgresAccountStore creates a new account store.
func NewPostgresAccountStore(db store.DBTX) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

var _ store.AccountStore = (*PostgresAccountStore)(nil)

// Create inserts a new account.
func (s *PostgresAccountStore) Create(ctx context.Context, account *domain.Account) error {
	log := logger.FromContext(ctx)

	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :username, :email, :first_name, :last_name, :hashed_password,
			:date_joined, :last_login, :is_active, :is_moderator, :is_hellbanned, :enable_commenting,
			:email_bounced, :remind_after, :remind_every, :last_reminder_sent, :total_score)`,
		account)
	if err != nil {
		log.Error("failed to insert account", "account_id", account.ID, "error", err)
		return MapError(err)
	}
	return nil
}

func (s *PostgresAccountStore) getOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := sqlx.GetContext(ctx, s.db, &a, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	if err != nil {
		return nil, mapGetError(err, store.ErrAccountNotFound)
	}
	return &a, nil
}

// GetByID retrieves an account by ID.
func (s *PostgresAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetByUsername retrieves an account by username, ignoring case.
func (s *PostgresAccountStore) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.getOne(ctx, "LOWER(username) = LOWER($1)", strings.TrimSpace(username))
}

// GetByEmail retrieves an account by normalized email.
func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.getOne(ctx, "email = $1", domain.NormalizeEmail(email))
}

// Update saves the mutable profile fields of an account.
func (s *PostgresAccountStore) Update(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE accounts SET
			username = :username, email = :email, first_name = :first_name, last_name = :last_name,
			is_active = :is_active, is_moderator = :is_moderator, is_hellbanned = :is_hellbanned,
			enable_commenting = :enable_commenting, email_bounced = :email_bounced,
			remind_after = :remind_after, remind_every = :remind_every
		WHERE id = :id`, account)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// UpdatePassword replaces the stored password hash.
func (s *PostgresAccountStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET hashed_password = $2 WHERE id = $1`, id, hashedPassword)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// UpdateLastLogin records a successful login.
func (s *PostgresAccountStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_login = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// AddScore atomically adds points to the account total and returns the
// totals before and after.
func (s *PostgresAccountStore) AddScore(ctx context.Context, id uuid.UUID, points int) (int, int, error) {
	var totals struct {
		Before int `db:"before"`
		After  int `db:"after"`
	}
	err := sqlx.GetContext(ctx, s.db, &totals, `
		UPDATE accounts SET total_score = total_score + $2
		WHERE id = $1
		RETURNING total_score - $2 AS before, total_score AS after`, id, points)
	if err != nil {
		return 0, 0, mapGetError(err, store.ErrAccountNotFound)
	}
	return totals.Before, totals.After, nil
}

// MarkBounced flags every account using email as undeliverable.
func (s *PostgresAccountStore) MarkBounced(ctx context.Context, email string, at time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET email_bounced = $2 WHERE email = $1 AND email_bounced IS NULL`,
		domain.NormalizeEmail(email), at.UTC())
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// SetLastReminderSent records when a reminder email went out.
func (s *PostgresAccountStore) SetLastReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_reminder_sent = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// ListReminderCandidates returns active, reachable accounts with at least one
// verse due for review, along with the earliest due time.
func (s *PostgresAccountStore) ListReminderCandidates(ctx context.Context, now time.Time) ([]*domain.ReminderCandidate, error) {
	var candidates []*domain.ReminderCandidate
	err := sqlx.SelectContext(ctx, s.db, &candidates, `
		SELECT a.id, a.username, a.email, a.first_name, a.last_name, a.hashed_password,
			a.date_joined, a.last_login, a.is_active, a.is_moderator, a.is_hellbanned,
			a.enable_commenting, a.email_bounced, a.remind_after, a.remind_every,
			a.last_reminder_sent, a.total_score,
			MIN(uvs.next_test_due) AS first_due,
			COUNT(*) FILTER (WHERE uvs.next_test_due <= $1) AS due_count
		FROM accounts a
		JOIN user_verse_statuses uvs ON uvs.account_id = a.id
		WHERE a.is_active
			AND a.email_bounced IS NULL
			AND a.remind_after > 0
			AND uvs.memory_stage = $2
			AND NOT uvs.ignored
			AND uvs.next_test_due IS NOT NULL
		GROUP BY a.id
		HAVING COUNT(*) FILTER (WHERE uvs.next_test_due <= $1) > 0
		ORDER BY a.id`, now.UTC(), int(domain.MemoryStageTested))
	if err != nil {
		return nil, MapError(err)
	}
	return candidates, nil
}

// CountReferrals counts identities referred by the account.
func (s *PostgresAccountStore) CountReferrals(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n,
		`SELECT COUNT(*) FROM identities WHERE referred_by_id = $1`, id); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CreateIdentity inserts the learning preferences of an account.
func (s *PostgresAccountStore) CreateIdentity(ctx context.Context, identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO identities (account_id, default_version_slug, testing_method,
			interface_language, referred_by_id, track_learning)
		VALUES (:account_id, :default_version_slug, :testing_method,
			:interface_language, :referred_by_id, :track_learning)`, identity)
	return MapError(err)
}

// GetIdentity retrieves the learning preferences of an account.
func (s *PostgresAccountStore) GetIdentity(ctx context.Context, accountID uuid.UUID) (*domain.Identity, error) {
	var identity domain.Identity
	err := sqlx.GetContext(ctx, s.db, &identity, `
		SELECT account_id, default_version_slug, testing_method, interface_language,
			referred_by_id, track_learning
		FROM identities WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, mapGetError(err, store.ErrIdentityNotFound)
	}
	return &identity, nil
}

// UpdateIdentity saves the learning preferences of an account.
func (s *PostgresAccountStore) UpdateIdentity(ctx context.Context, identity *domain.Identity) error {
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE identities SET
			default_version_slug = :default_version_slug,
			testing_method = :testing_method,
			interface_language = :interface_language,
			track_learning = :track_learning
		WHERE account_id = :account_id`, identity)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrIdentityNotFound)
}
