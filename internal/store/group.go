package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// GroupStore defines persistence for groups, memberships and invitations.
type GroupStore interface {
	// Create returns ErrSlugExists when the slug is taken.
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)

	// GetBySlug returns ErrGroupNotFound when missing.
	GetBySlug(ctx context.Context, slug string) (*domain.Group, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, group *domain.Group) error

	// ListVisible returns public groups and groups viewerID belongs to.
	ListVisible(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*domain.Group, error)

	// AddMember reports false when the account is already a member.
	AddMember(ctx context.Context, m *domain.Membership) (bool, error)

	// RemoveMember returns ErrMembershipMissing when not a member.
	RemoveMember(ctx context.Context, groupID, accountID uuid.UUID) error
	IsMember(ctx context.Context, groupID, accountID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.GroupMember, error)
	MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)

	// CreateInvitation is idempotent.
	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	HasInvitation(ctx context.Context, groupID, accountID uuid.UUID) (bool, error)

	// RelatedAccountIDs returns accounts sharing at least one group with accountID.
	RelatedAccountIDs(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)

	// CountMembersOfCreatedGroups counts distinct members, other than the
	// creator, of groups created by accountID.
	CountMembersOfCreatedGroups(ctx context.Context, accountID uuid.UUID) (int, error)
}
