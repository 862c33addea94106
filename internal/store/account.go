package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// AccountStore defines the interface for account and identity persistence.
type AccountStore interface {
	// Create saves a new account.
	// Returns ErrUsernameExists or ErrEmailExists when either is taken.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID. Returns ErrAccountNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// GetByUsername retrieves an account by username, case-insensitively.
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// GetByEmail retrieves an account by normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Update saves profile and preference fields. Password, score and
	// bookkeeping timestamps have dedicated methods.
	Update(ctx context.Context, account *domain.Account) error

	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// AddScore atomically adds points to the account total and returns the
	// totals before and after.
	AddScore(ctx context.Context, id uuid.UUID, points int) (before, after int, err error)

	// MarkBounced sets EmailBounced on every account using email and returns
	// the number of accounts affected.
	MarkBounced(ctx context.Context, email string, at time.Time) (int64, error)

	SetLastReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListReminderCandidates returns active accounts with reminders enabled,
	// a deliverable address and at least one tested verse, with the earliest
	// NextTestDue and the number of verses due at now.
	ListReminderCandidates(ctx context.Context, now time.Time) ([]*domain.ReminderCandidate, error)

	// CountReferrals counts accounts whose identity names id as referrer.
	CountReferrals(ctx context.Context, id uuid.UUID) (int, error)

	CreateIdentity(ctx context.Context, identity *domain.Identity) error

	// GetIdentity returns ErrIdentityNotFound when missing.
	GetIdentity(ctx context.Context, accountID uuid.UUID) (*domain.Identity, error)
	UpdateIdentity(ctx context.Context, identity *domain.Identity) error
}
