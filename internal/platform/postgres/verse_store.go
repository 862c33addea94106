package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const (
	versionColumns = `id, slug, short_name, full_name, language_code, public`
	verseColumns   = `version_id, localized_reference, text, book_number, chapter_number,
		verse_number, bible_verse_number, missing`
)

// PostgresVerseStore implements store.VerseStore.
type PostgresVerseStore struct {
	db store.DBTX
}

// NewPostgresVerseStore creates a new verse store.
func NewPostgresVerseStore(db store.DBTX) *PostgresVerseStore {
	return &PostgresVerseStore{db: db}
}

var _ store.VerseStore = (*PostgresVerseStore)(nil)

// ListVersions returns every public text version.
func (s *PostgresVerseStore) ListVersions(ctx context.Context) ([]*domain.TextVersion, error) {
	var versions []*domain.TextVersion
	err := sqlx.SelectContext(ctx, s.db, &versions,
		`SELECT `+versionColumns+` FROM text_versions WHERE public ORDER BY short_name`)
	if err != nil {
		return nil, MapError(err)
	}
	return versions, nil
}

// GetVersionBySlug retrieves a text version by slug.
func (s *PostgresVerseStore) GetVersionBySlug(ctx context.Context, slug string) (*domain.TextVersion, error) {
	var v domain.TextVersion
	err := sqlx.GetContext(ctx, s.db, &v,
		`SELECT `+versionColumns+` FROM text_versions WHERE slug = $1`, slug)
	if err != nil {
		return nil, mapGetError(err, store.ErrVersionNotFound)
	}
	return &v, nil
}

// GetVersionByID retrieves a text version by ID.
func (s *PostgresVerseStore) GetVersionByID(ctx context.Context, id uuid.UUID) (*domain.TextVersion, error) {
	var v domain.TextVersion
	err := sqlx.GetContext(ctx, s.db, &v,
		`SELECT `+versionColumns+` FROM text_versions WHERE id = $1`, id)
	if err != nil {
		return nil, mapGetError(err, store.ErrVersionNotFound)
	}
	return &v, nil
}

// GetVerses returns the verses covered by ref in canonical order. Verses
// marked missing in the version are skipped. An empty result means the
// reference does not exist in this version.
func (s *PostgresVerseStore) GetVerses(ctx context.Context, versionID uuid.UUID, ref domain.ParsedReference) ([]*domain.Verse, error) {
	startChapter, startVerse, endChapter, endVerse := ref.Bounds()

	var verses []*domain.Verse
	err := sqlx.SelectContext(ctx, s.db, &verses, `
		SELECT `+verseColumns+`
		FROM verses
		WHERE version_id = $1
			AND book_number = $2
			AND (chapter_number, verse_number) BETWEEN ($3::int, $4::int) AND ($5::int, $6::int)
			AND NOT missing
		ORDER BY bible_verse_number`,
		versionID, ref.BookNumber, startChapter, startVerse, endChapter, endVerse)
	if err != nil {
		return nil, MapError(err)
	}
	return verses, nil
}

// GetVersesByNumbers returns the verses with the given canonical numbers.
func (s *PostgresVerseStore) GetVersesByNumbers(ctx context.Context, versionID uuid.UUID, numbers []int) ([]*domain.Verse, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	nums := make([]int64, len(numbers))
	for i, n := range numbers {
		nums[i] = int64(n)
	}

	var verses []*domain.Verse
	err := sqlx.SelectContext(ctx, s.db, &verses, `
		SELECT `+verseColumns+`
		FROM verses
		WHERE version_id = $1 AND bible_verse_number = ANY($2::int[])
		ORDER BY bible_verse_number`, versionID, pq.Array(nums))
	if err != nil {
		return nil, MapError(err)
	}
	return verses, nil
}
