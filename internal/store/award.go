package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// AwardStore defines persistence for awards.
type AwardStore interface {
	// Create inserts an award. It reports false when the account already
	// holds that level.
	Create(ctx context.Context, award *domain.Award) (bool, error)

	// ListByAccount returns awards ordered by type then level.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error)
}
