package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const pageColumns = `id, parent_id, title, slug, url, content, is_public, in_navigation,
	sort_order, lft, rght, tree_id, level, created, updated`

// PostgresPageStore implements store.PageStore.
type PostgresPageStore struct {
	db store.DBTX
}

// NewPostgresPageStore creates a new page store.
func NewPostgresPageStore(db store.DBTX) *PostgresPageStore {
	return &PostgresPageStore{db: db}
}

var _ store.PageStore = (*PostgresPageStore)(nil)

// Create inserts a page. Tree fields are expected to be computed already.
func (s *PostgresPageStore) Create(ctx context.Context, page *domain.Page) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO pages (`+pageColumns+`)
		VALUES (:id, :parent_id, :title, :slug, :url, :content, :is_public, :in_navigation,
			:sort_order, :lft, :rght, :tree_id, :level, :created, :updated)`, page)
	return MapError(err)
}

// GetByID retrieves a page by ID.
func (s *PostgresPageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Page, error) {
	var p domain.Page
	if err := sqlx.GetContext(ctx, s.db, &p, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id); err != nil {
		return nil, mapGetError(err, store.ErrPageNotFound)
	}
	return &p, nil
}

// GetByURL retrieves a page by its full URL path.
func (s *PostgresPageStore) GetByURL(ctx context.Context, url string) (*domain.Page, error) {
	var p domain.Page
	if err := sqlx.GetContext(ctx, s.db, &p, `SELECT `+pageColumns+` FROM pages WHERE url = $1`, url); err != nil {
		return nil, mapGetError(err, store.ErrPageNotFound)
	}
	return &p, nil
}

// ListAll returns every page in tree order.
func (s *PostgresPageStore) ListAll(ctx context.Context) ([]*domain.Page, error) {
	var pages []*domain.Page
	err := sqlx.SelectContext(ctx, s.db, &pages,
		`SELECT `+pageColumns+` FROM pages ORDER BY tree_id, lft`)
	if err != nil {
		return nil, MapError(err)
	}
	return pages, nil
}

// Update saves the content fields of a page.
func (s *PostgresPageStore) Update(ctx context.Context, page *domain.Page) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE pages SET
			title = :title, content = :content, is_public = :is_public,
			in_navigation = :in_navigation, updated = :updated
		WHERE id = :id`, page)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPageNotFound)
}

// SaveTree writes the structure of every given page. URLs are first moved to
// unique placeholders so that swapping two subtrees cannot trip the unique
// URL constraint part way through.
func (s *PostgresPageStore) SaveTree(ctx context.Context, pages []*domain.Page) error {
	if len(pages) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE pages SET url = id::text WHERE id = ANY($1::uuid[])`,
		pq.Array(uuidStrings(ids))); err != nil {
		return MapError(err)
	}

	for _, p := range pages {
		result, err := sqlx.NamedExecContext(ctx, s.db, `
			UPDATE pages SET
				parent_id = :parent_id, slug = :slug, url = :url, sort_order = :sort_order,
				lft = :lft, rght = :rght, tree_id = :tree_id, level = :level, updated = :updated
			WHERE id = :id`, p)
		if err != nil {
			return fmt.Errorf("failed to save page %s: %w", p.ID, MapError(err))
		}
		if err := CheckRowsAffected(result, store.ErrPageNotFound); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the given pages.
func (s *PostgresPageStore) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM pages WHERE id = ANY($1::uuid[])`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPageNotFound)
}
