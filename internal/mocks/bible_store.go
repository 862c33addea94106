package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// VerseStore is an in-memory store.VerseStore.
type VerseStore struct {
	db *MemoryDB
}

var _ store.VerseStore = (*VerseStore)(nil)

// ListVersions implements store.VerseStore.
func (s *VerseStore) ListVersions(_ context.Context) ([]*domain.TextVersion, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.TextVersion
	for _, v := range s.db.versions {
		if v.Public {
			out = append(out, clone(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

// GetVersionBySlug implements store.VerseStore.
func (s *VerseStore) GetVersionBySlug(_ context.Context, slug string) (*domain.TextVersion, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, v := range s.db.versions {
		if strings.EqualFold(v.Slug, slug) {
			return clone(v), nil
		}
	}
	return nil, store.ErrVersionNotFound
}

// GetVersionByID implements store.VerseStore.
func (s *VerseStore) GetVersionByID(_ context.Context, id uuid.UUID) (*domain.TextVersion, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, v := range s.db.versions {
		if v.ID == id {
			return clone(v), nil
		}
	}
	return nil, store.ErrVersionNotFound
}

// GetVerses implements store.VerseStore.
func (s *VerseStore) GetVerses(_ context.Context, versionID uuid.UUID, ref domain.ParsedReference) ([]*domain.Verse, error) {
	startChapter, startVerse, endChapter, endVerse := ref.Bounds()
	start := startChapter*1000 + startVerse
	end := endChapter*1000 + endVerse

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Verse
	for _, v := range s.db.verses {
		pos := v.ChapterNumber*1000 + v.VerseNumber
		if v.VersionID == versionID && !v.Missing && v.BookNumber == ref.BookNumber &&
			pos >= start && pos <= end {
			out = append(out, clone(v))
		}
	}
	sortVerses(out)
	return out, nil
}

// GetVersesByNumbers implements store.VerseStore.
func (s *VerseStore) GetVersesByNumbers(_ context.Context, versionID uuid.UUID, numbers []int) ([]*domain.Verse, error) {
	want := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		want[n] = true
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Verse
	for _, v := range s.db.verses {
		if v.VersionID == versionID && want[v.BibleVerseNumber] {
			out = append(out, clone(v))
		}
	}
	sortVerses(out)
	return out, nil
}

func sortVerses(vs []*domain.Verse) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].BibleVerseNumber < vs[j].BibleVerseNumber })
}
