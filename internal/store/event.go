package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// EventStore defines persistence for activity feed events.
type EventStore interface {
	Create(ctx context.Context, event *domain.Event) error

	// GetByID returns ErrEventNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// ListSince returns up to limit events created after since, newest first,
	// with the actor's username and hellban flag populated.
	ListSince(ctx context.Context, since time.Time, limit int) ([]*domain.Event, error)

	// ListByAccount returns an account's events, newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Event, error)
}
