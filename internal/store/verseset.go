package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// VerseSetOrder selects the ordering of verse set searches.
type VerseSetOrder string

// Search orders.
const (
	VerseSetOrderPopularity VerseSetOrder = "popularity"
	VerseSetOrderNewest     VerseSetOrder = "newest"
)

// VerseSetSearch are the parameters of VerseSetStore.Search.
type VerseSetSearch struct {
	Query    string
	Order    VerseSetOrder
	ViewerID uuid.UUID
	Limit    int
	Offset   int
}

// VerseSetStore defines persistence for verse sets and their choices.
type VerseSetStore interface {
	// Create saves a set with its choices. Returns ErrSlugExists.
	Create(ctx context.Context, set *domain.VerseSet, choices []*domain.VerseChoice) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.VerseSet, error)

	// GetBySlug returns ErrVerseSetNotFound when missing.
	GetBySlug(ctx context.Context, slug string) (*domain.VerseSet, error)

	SlugExists(ctx context.Context, slug string) (bool, error)

	// Update saves the descriptive fields of a set.
	Update(ctx context.Context, set *domain.VerseSet) error

	// ReplaceChoices deletes the current choices and inserts choices.
	ReplaceChoices(ctx context.Context, setID uuid.UUID, choices []*domain.VerseChoice) error

	// ListChoices returns choices ordered by SetOrder.
	ListChoices(ctx context.Context, setID uuid.UUID) ([]*domain.VerseChoice, error)

	// Search finds public sets and the viewer's own sets.
	Search(ctx context.Context, params VerseSetSearch) ([]*domain.VerseSet, error)

	IncrementPopularity(ctx context.Context, id uuid.UUID) error

	CountPublicByCreator(ctx context.Context, accountID uuid.UUID) (int, error)

	// CountLearnersOfCreatorSets counts distinct other accounts learning any
	// set created by accountID.
	CountLearnersOfCreatorSets(ctx context.Context, accountID uuid.UUID) (int, error)
}
