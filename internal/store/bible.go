package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// VerseStore defines read access to Bible versions and verse text.
type VerseStore interface {
	// ListVersions returns public versions ordered by short name.
	ListVersions(ctx context.Context) ([]*domain.TextVersion, error)

	// GetVersionBySlug returns ErrVersionNotFound when missing.
	GetVersionBySlug(ctx context.Context, slug string) (*domain.TextVersion, error)
	GetVersionByID(ctx context.Context, id uuid.UUID) (*domain.TextVersion, error)

	// GetVerses returns the non-missing verses covered by ref, ordered by
	// bible verse number. An empty result is not an error.
	GetVerses(ctx context.Context, versionID uuid.UUID, ref domain.ParsedReference) ([]*domain.Verse, error)

	// GetVersesByNumbers returns verses with the given bible verse numbers.
	GetVersesByNumbers(ctx context.Context, versionID uuid.UUID, numbers []int) ([]*domain.Verse, error)
}
