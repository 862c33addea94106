package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const commentSelect = `
	SELECT c.id, c.author_id, c.event_id, c.group_id, c.message, c.created, c.hidden,
		a.username AS author_username, a.is_hellbanned AS author_hellbanned
	FROM comments c
	JOIN accounts a ON a.id = c.author_id`

// PostgresCommentStore implements store.CommentStore.
type PostgresCommentStore struct {
	db store.DBTX
}

// NewPostgresCommentStore creates a new comment store.
func NewPostgresCommentStore(db store.DBTX) *PostgresCommentStore {
	return &PostgresCommentStore{db: db}
}

var _ store.CommentStore = (*PostgresCommentStore)(nil)

// Create inserts a comment.
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO comments (id, author_id, event_id, group_id, message, created, hidden)
		VALUES (:id, :author_id, :event_id, :group_id, :message, :created, :hidden)`, comment)
	return MapError(err)
}

// GetByID retrieves a comment with its author.
func (s *PostgresCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var c domain.Comment
	if err := sqlx.GetContext(ctx, s.db, &c, commentSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, mapGetError(err, store.ErrCommentNotFound)
	}
	return &c, nil
}

// ListForEvent lists the comments on an event, oldest first.
func (s *PostgresCommentStore) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := sqlx.SelectContext(ctx, s.db, &comments,
		commentSelect+` WHERE c.event_id = $1 ORDER BY c.created, c.id`, eventID)
	if err != nil {
		return nil, MapError(err)
	}
	return comments, nil
}

// ListForGroup lists the comments on a group wall, newest first.
func (s *PostgresCommentStore) ListForGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := sqlx.SelectContext(ctx, s.db, &comments,
		commentSelect+` WHERE c.group_id = $1 ORDER BY c.created DESC, c.id`, groupID)
	if err != nil {
		return nil, MapError(err)
	}
	return comments, nil
}

// SetHidden hides or restores a comment.
func (s *PostgresCommentStore) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE comments SET hidden = $2 WHERE id = $1`, id, hidden)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCommentNotFound)
}
