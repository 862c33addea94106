package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const verseSetColumns = `id, name, slug, description, set_type, public, created_by_id,
	date_added, popularity, passage_ref`

// PostgresVerseSetStore implements store.VerseSetStore.
type PostgresVerseSetStore struct {
	db store.DBTX
}

// NewPostgresVerseSetStore creates a new verse set store.
func NewPostgresVerseSetStore(db store.DBTX) *PostgresVerseSetStore {
	return &PostgresVerseSetStore{db: db}
}

var _ store.VerseSetStore = (*PostgresVerseSetStore)(nil)

// Create inserts a verse set and its choices.
func (s *PostgresVerseSetStore) Create(ctx context.Context, set *domain.VerseSet, choices []*domain.VerseChoice) error {
	log := logger.FromContext(ctx)

	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO verse_sets (`+verseSetColumns+`)
		VALUES (:id, :name, :slug, :description, :set_type, :public, :created_by_id,
			:date_added, :popularity, :passage_ref)`, set)
	if err != nil {
		log.Error("failed to insert verse set", "verse_set_id", set.ID, "error", err)
		return MapError(err)
	}
	return s.insertChoices(ctx, choices)
}

func (s *PostgresVerseSetStore) insertChoices(ctx context.Context, choices []*domain.VerseChoice) error {
	for _, c := range choices {
		_, err := sqlx.NamedExecContext(ctx, s.db, `
			INSERT INTO verse_choices (id, verse_set_id, internal_reference, set_order)
			VALUES (:id, :verse_set_id, :internal_reference, :set_order)`, c)
		if err != nil {
			return fmt.Errorf("failed to insert choice %q: %w", c.InternalReference, MapError(err))
		}
	}
	return nil
}

func (s *PostgresVerseSetStore) getOne(ctx context.Context, where string, arg any) (*domain.VerseSet, error) {
	var vs domain.VerseSet
	err := sqlx.GetContext(ctx, s.db, &vs, `SELECT `+verseSetColumns+` FROM verse_sets WHERE `+where, arg)
	if err != nil {
		return nil, mapGetError(err, store.ErrVerseSetNotFound)
	}
	return &vs, nil
}

// GetByID retrieves a verse set by ID.
func (s *PostgresVerseSetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VerseSet, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetBySlug retrieves a verse set by slug.
func (s *PostgresVerseSetStore) GetBySlug(ctx context.Context, slug string) (*domain.VerseSet, error) {
	return s.getOne(ctx, "slug = $1", slug)
}

// SlugExists reports whether a verse set already uses slug.
func (s *PostgresVerseSetStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, s.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM verse_sets WHERE slug = $1)`, slug); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Update saves the editable fields of a verse set.
func (s *PostgresVerseSetStore) Update(ctx context.Context, set *domain.VerseSet) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE verse_sets SET
			name = :name, description = :description, public = :public, passage_ref = :passage_ref
		WHERE id = :id`, set)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrVerseSetNotFound)
}

// ReplaceChoices swaps the whole choice list of a set.
func (s *PostgresVerseSetStore) ReplaceChoices(ctx context.Context, setID uuid.UUID, choices []*domain.VerseChoice) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM verse_choices WHERE verse_set_id = $1`, setID); err != nil {
		return MapError(err)
	}
	return s.insertChoices(ctx, choices)
}

// ListChoices returns the choices of a set in set order.
func (s *PostgresVerseSetStore) ListChoices(ctx context.Context, setID uuid.UUID) ([]*domain.VerseChoice, error) {
	var choices []*domain.VerseChoice
	err := sqlx.SelectContext(ctx, s.db, &choices, `
		SELECT id, verse_set_id, internal_reference, set_order
		FROM verse_choices WHERE verse_set_id = $1
		ORDER BY set_order`, setID)
	if err != nil {
		return nil, MapError(err)
	}
	return choices, nil
}

// Search lists public sets, plus the viewer's own private sets, matching the
// query against name and description.
func (s *PostgresVerseSetStore) Search(ctx context.Context, params store.VerseSetSearch) ([]*domain.VerseSet, error) {
	order := "popularity DESC, date_added DESC"
	if params.Order == store.VerseSetOrderNewest {
		order = "date_added DESC"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(strings.TrimSpace(params.Query)) + "%"

	var sets []*domain.VerseSet
	err := sqlx.SelectContext(ctx, s.db, &sets, `
		SELECT `+verseSetColumns+`
		FROM verse_sets
		WHERE (public OR created_by_id = $1)
			AND (name ILIKE $2 OR description ILIKE $2)
		ORDER BY `+order+`, id
		LIMIT $3 OFFSET $4`, params.ViewerID, pattern, limit, params.Offset)
	if err != nil {
		return nil, MapError(err)
	}
	return sets, nil
}

// IncrementPopularity counts a new learner of the set.
func (s *PostgresVerseSetStore) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE verse_sets SET popularity = popularity + 1 WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrVerseSetNotFound)
}

// CountPublicByCreator counts public sets created by the account.
func (s *PostgresVerseSetStore) CountPublicByCreator(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n,
		`SELECT COUNT(*) FROM verse_sets WHERE created_by_id = $1 AND public`, accountID); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// CountLearnersOfCreatorSets counts other accounts learning from sets the
// account created.
func (s *PostgresVerseSetStore) CountLearnersOfCreatorSets(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, `
		SELECT COUNT(DISTINCT uvs.account_id)
		FROM user_verse_statuses uvs
		JOIN verse_sets vs ON vs.id = uvs.verse_set_id
		WHERE vs.created_by_id = $1 AND uvs.account_id <> $1`, accountID)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
