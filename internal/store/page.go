package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// PageStore defines persistence for CMS pages.
type PageStore interface {
	Create(ctx context.Context, page *domain.Page) error

	// GetByID returns ErrPageNotFound when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error)
	GetByURL(ctx context.Context, url string) (*domain.Page, error)

	// ListAll returns every page ordered by tree and lft.
	ListAll(ctx context.Context) ([]*domain.Page, error)

	// Update saves the editable fields of a page.
	Update(ctx context.Context, page *domain.Page) error

	// SaveTree writes the parent, url and nested-set columns of pages.
	// Returns ErrSlugExists if two pages end up with the same URL.
	SaveTree(ctx context.Context, pages []*domain.Page) error

	// Delete removes the pages with the given IDs.
	Delete(ctx context.Context, ids []uuid.UUID) error
}
