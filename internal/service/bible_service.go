package service

import (
	"context"
	"fmt"

	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// Passage is the text of a reference in one version.
type Passage struct {
	Version   *domain.TextVersion `json:"version"`
	Reference string              `json:"reference"`
	Verses    []*domain.Verse     `json:"verses"`
}

// BibleService reads Bible versions and verse text.
type BibleService interface {
	ListVersions(ctx context.Context) ([]*domain.TextVersion, error)

	// GetVerses expands reference into ordered verses of the version.
	// Returns domain.ErrInvalidReference, store.ErrVersionNotFound or ErrNoVerses.
	GetVerses(ctx context.Context, versionSlug, reference string) (*Passage, error)
}

type bibleService struct {
	deps Deps
}

// NewBibleService creates a BibleService.
func NewBibleService(deps Deps) BibleService {
	return &bibleService{deps: deps.withComponent("bible_service")}
}

func (s *bibleService) ListVersions(ctx context.Context) ([]*domain.TextVersion, error) {
	versions, err := s.deps.UoW.Stores().Verses.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

func (s *bibleService) GetVerses(ctx context.Context, versionSlug, reference string) (*Passage, error) {
	st := s.deps.UoW.Stores()
	version, err := st.Verses.GetVersionBySlug(ctx, versionSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load version: %w", err)
	}
	ref, verses, err := resolveReference(ctx, st, version, reference)
	if err != nil {
		return nil, err
	}
	return &Passage{Version: version, Reference: ref.Canonical(), Verses: verses}, nil
}

// resolveReference parses reference and loads its verses, requiring at least one.
func resolveReference(ctx context.Context, st store.Stores, version *domain.TextVersion, reference string) (domain.ParsedReference, []*domain.Verse, error) {
	ref, err := domain.ParseReference(reference)
	if err != nil {
		return ref, nil, err
	}
	verses, err := st.Verses.GetVerses(ctx, version.ID, ref)
	if err != nil {
		return ref, nil, fmt.Errorf("failed to load verses: %w", err)
	}
	if len(verses) == 0 {
		return ref, nil, fmt.Errorf("%w: %s in %s", ErrNoVerses, ref.Canonical(), version.ShortName)
	}
	return ref, verses, nil
}
