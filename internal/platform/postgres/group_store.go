package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

const groupColumns = `id, name, slug, description, created_by_id, public, open, created`

// PostgresGroupStore implements store.GroupStore.
type PostgresGroupStore struct {
	db store.DBTX
}

// NewPostgresGroupStore creates a new group store.
func NewPostgresGroupStore(db store.DBTX) *PostgresGroupStore {
	return &PostgresGroupStore{db: db}
}

var _ store.GroupStore = (*PostgresGroupStore)(nil)

// Create inserts a group.
func (s *PostgresGroupStore) Create(ctx context.Context, group *domain.Group) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO groups (`+groupColumns+`)
		VALUES (:id, :name, :slug, :description, :created_by_id, :public, :open, :created)`, group)
	return MapError(err)
}

// GetByID retrieves a group by ID.
func (s *PostgresGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var g domain.Group
	if err := sqlx.GetContext(ctx, s.db, &g, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id); err != nil {
		return nil, mapGetError(err, store.ErrGroupNotFound)
	}
	return &g, nil
}

// GetBySlug retrieves a group by slug.
func (s *PostgresGroupStore) GetBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var g domain.Group
	if err := sqlx.GetContext(ctx, s.db, &g, `SELECT `+groupColumns+` FROM groups WHERE slug = $1`, slug); err != nil {
		return nil, mapGetError(err, store.ErrGroupNotFound)
	}
	return &g, nil
}

// SlugExists reports whether a group already uses slug.
func (s *PostgresGroupStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, s.db, &exists,
		`SELECT EXISTS (SELECT 1 FROM groups WHERE slug = $1)`, slug); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Update saves the editable fields of a group.
func (s *PostgresGroupStore) Update(ctx context.Context, group *domain.Group) error {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		UPDATE groups SET name = :name, description = :description, public = :public, open = :open
		WHERE id = :id`, group)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGroupNotFound)
}

// ListVisible lists public groups and groups the viewer belongs to.
func (s *PostgresGroupStore) ListVisible(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := sqlx.SelectContext(ctx, s.db, &groups, `
		SELECT `+groupColumns+`
		FROM groups g
		WHERE g.public
			OR EXISTS (SELECT 1 FROM memberships m WHERE m.group_id = g.id AND m.account_id = $1)
		ORDER BY g.name, g.id
		LIMIT $2 OFFSET $3`, viewerID, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	return groups, nil
}

// AddMember inserts a membership. It reports false when the account was
// already a member.
func (s *PostgresGroupStore) AddMember(ctx context.Context, m *domain.Membership) (bool, error) {
	result, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO memberships (group_id, account_id, created)
		VALUES (:group_id, :account_id, :created)
		ON CONFLICT (group_id, account_id) DO NOTHING`, m)
	if err != nil {
		return false, MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveMember deletes a membership.
func (s *PostgresGroupStore) RemoveMember(ctx context.Context, groupID, accountID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE group_id = $1 AND account_id = $2`, groupID, accountID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMembershipMissing)
}

// IsMember reports whether the account belongs to the group.
func (s *PostgresGroupStore) IsMember(ctx context.Context, groupID, accountID uuid.UUID) (bool, error) {
	var member bool
	err := sqlx.GetContext(ctx, s.db, &member,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE group_id = $1 AND account_id = $2)`,
		groupID, accountID)
	if err != nil {
		return false, MapError(err)
	}
	return member, nil
}

// ListMembers lists the members of a group in join order.
func (s *PostgresGroupStore) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMember, error) {
	var members []*domain.GroupMember
	err := sqlx.SelectContext(ctx, s.db, &members, `
		SELECT m.account_id, a.username, m.created
		FROM memberships m
		JOIN accounts a ON a.id = m.account_id
		WHERE m.group_id = $1
		ORDER BY m.created, a.username`, groupID)
	if err != nil {
		return nil, MapError(err)
	}
	return members, nil
}

// MemberIDs returns the account IDs of a group's members.
func (s *PostgresGroupStore) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := sqlx.SelectContext(ctx, s.db, &ids,
		`SELECT account_id FROM memberships WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// CreateInvitation inserts or refreshes an invitation.
func (s *PostgresGroupStore) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	_, err := sqlx.NamedExecContext(ctx, s.db, `
		INSERT INTO invitations (group_id, account_id, created_by_id, created)
		VALUES (:group_id, :account_id, :created_by_id, :created)
		ON CONFLICT (group_id, account_id)
		DO UPDATE SET created_by_id = EXCLUDED.created_by_id, created = EXCLUDED.created`, inv)
	return MapError(err)
}

// HasInvitation reports whether the account was invited to the group.
func (s *PostgresGroupStore) HasInvitation(ctx context.Context, groupID, accountID uuid.UUID) (bool, error) {
	var invited bool
	err := sqlx.GetContext(ctx, s.db, &invited,
		`SELECT EXISTS (SELECT 1 FROM invitations WHERE group_id = $1 AND account_id = $2)`,
		groupID, accountID)
	if err != nil {
		return false, MapError(err)
	}
	return invited, nil
}

// RelatedAccountIDs returns the accounts sharing at least one group with the
// account, excluding the account itself.
func (s *PostgresGroupStore) RelatedAccountIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := sqlx.SelectContext(ctx, s.db, &ids, `
		SELECT DISTINCT other.account_id
		FROM memberships mine
		JOIN memberships other ON other.group_id = mine.group_id
		WHERE mine.account_id = $1 AND other.account_id <> $1`, accountID)
	if err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// CountMembersOfCreatedGroups counts distinct other members of groups the
// account created.
func (s *PostgresGroupStore) CountMembersOfCreatedGroups(ctx context.Context, accountID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, s.db, &n, `
		SELECT COUNT(DISTINCT m.account_id)
		FROM memberships m
		JOIN groups g ON g.id = m.group_id
		WHERE g.created_by_id = $1 AND m.account_id <> $1`, accountID)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
