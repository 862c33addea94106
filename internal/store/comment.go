package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// CommentStore defines persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID returns ErrCommentNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListForEvent and ListForGroup return comments oldest first, with author
	// username and hellban flag populated. Filtering is left to the caller.
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error)
	ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Comment, error)

	SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error
}
