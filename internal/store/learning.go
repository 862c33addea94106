package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// LearningStore defines persistence for UserVerseStatus rows and test history.
type LearningStore interface {
	// Create inserts a status. It reports false without error when the
	// account is already learning the same (version, reference, verse set).
	// A cancelled row for that key is reactivated with fresh progress and
	// status.ID is set to its id.
	Create(ctx context.Context, status *domain.UserVerseStatus) (bool, error)

	// GetByID returns ErrStatusNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserVerseStatus, error)

	// ListMatching returns the non-ignored statuses of an account for the
	// same verse in the same version, across verse sets.
	ListMatching(ctx context.Context, accountID, versionID uuid.UUID, internalRef string) ([]*domain.UserVerseStatus, error)

	// Update saves the learning fields of a status.
	Update(ctx context.Context, status *domain.UserVerseStatus) error

	// ReviewQueue returns tested, non-ignored statuses due at now or flagged
	// for early review, ordered by NextTestDue.
	ReviewQueue(ctx context.Context, accountID uuid.UUID, now time.Time, limit int) ([]*domain.UserVerseStatus, error)

	// NewQueue returns non-ignored statuses not yet tested, ordered by verse
	// set then text order.
	NewQueue(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.UserVerseStatus, error)

	// Progress counts distinct verses started, tested, learnt and due.
	Progress(ctx context.Context, accountID uuid.UUID, now time.Time, learntThreshold float64) (*domain.LearningProgress, error)

	// RecordTest appends to the test history.
	RecordTest(ctx context.Context, record *domain.TestRecord) error

	// ConsecutivePerfectTests counts the most recent tests with accuracy 1.
	ConsecutivePerfectTests(ctx context.Context, accountID uuid.UUID) (int, error)

	// DistinctTestHours counts distinct UTC hours of day with a test.
	DistinctTestHours(ctx context.Context, accountID uuid.UUID) (int, error)

	// DistinctTestDays counts distinct UTC dates with a test since since.
	DistinctTestDays(ctx context.Context, accountID uuid.UUID, since time.Time) (int, error)
}
