package mocks

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// GroupStore is an in-memory store.GroupStore.
type GroupStore struct {
	db *MemoryDB
}

var _ store.GroupStore = (*GroupStore)(nil)

// Create implements store.GroupStore.
func (s *GroupStore) Create(_ context.Context, group *domain.Group) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, g := range s.db.groups {
		if g.Slug == group.Slug {
			return store.ErrSlugExists
		}
	}
	s.db.groups[group.ID] = clone(group)
	return nil
}

// GetByID implements store.GroupStore.
func (s *GroupStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[id]
	if !ok {
		return nil, store.ErrGroupNotFound
	}
	return clone(g), nil
}

// GetBySlug implements store.GroupStore.
func (s *GroupStore) GetBySlug(_ context.Context, slug string) (*domain.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, g := range s.db.groups {
		if g.Slug == slug {
			return clone(g), nil
		}
	}
	return nil, store.ErrGroupNotFound
}

// SlugExists implements store.GroupStore.
func (s *GroupStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetBySlug(ctx, slug)
	return err == nil, nil
}

// Update implements store.GroupStore.
func (s *GroupStore) Update(_ context.Context, group *domain.Group) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cur, ok := s.db.groups[group.ID]
	if !ok {
		return store.ErrGroupNotFound
	}
	cur.Name = group.Name
	cur.Description = group.Description
	cur.Public = group.Public
	cur.Open = group.Open
	return nil
}

func (s *GroupStore) isMember(groupID, accountID uuid.UUID) bool {
	for _, m := range s.db.memberships {
		if m.GroupID == groupID && m.AccountID == accountID {
			return true
		}
	}
	return false
}

// ListVisible implements store.GroupStore.
func (s *GroupStore) ListVisible(_ context.Context, viewerID uuid.UUID, limit, offset int) ([]*domain.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Group
	for _, g := range s.db.groups {
		if g.Public || s.isMember(g.ID, viewerID) {
			out = append(out, clone(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit <= 0 {
		limit = 30
	}
	return paginate(out, limit, offset), nil
}

// AddMember implements store.GroupStore.
func (s *GroupStore) AddMember(_ context.Context, m *domain.Membership) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.groups[m.GroupID]; !ok {
		return false, store.ErrGroupNotFound
	}
	if s.isMember(m.GroupID, m.AccountID) {
		return false, nil
	}
	s.db.memberships = append(s.db.memberships, clone(m))
	return true, nil
}

// RemoveMember implements store.GroupStore.
func (s *GroupStore) RemoveMember(_ context.Context, groupID, accountID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, m := range s.db.memberships {
		if m.GroupID == groupID && m.AccountID == accountID {
			s.db.memberships = append(s.db.memberships[:i], s.db.memberships[i+1:]...)
			return nil
		}
	}
	return store.ErrMembershipMissing
}

// IsMember implements store.GroupStore.
func (s *GroupStore) IsMember(_ context.Context, groupID, accountID uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.isMember(groupID, accountID), nil
}

// ListMembers implements store.GroupStore.
func (s *GroupStore) ListMembers(_ context.Context, groupID uuid.UUID) ([]*domain.GroupMember, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.GroupMember
	for _, m := range s.db.memberships {
		if m.GroupID != groupID {
			continue
		}
		gm := &domain.GroupMember{AccountID: m.AccountID, Joined: m.Created}
		if a, ok := s.db.accounts[m.AccountID]; ok {
			gm.Username = a.Username
		}
		out = append(out, gm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// MemberIDs implements store.GroupStore.
func (s *GroupStore) MemberIDs(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := []uuid.UUID{}
	for _, m := range s.db.memberships {
		if m.GroupID == groupID {
			ids = append(ids, m.AccountID)
		}
	}
	return ids, nil
}

// CreateInvitation implements store.GroupStore.
func (s *GroupStore) CreateInvitation(_ context.Context, inv *domain.Invitation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, i := range s.db.invitations {
		if i.GroupID == inv.GroupID && i.AccountID == inv.AccountID {
			return nil
		}
	}
	s.db.invitations = append(s.db.invitations, clone(inv))
	return nil
}

// HasInvitation implements store.GroupStore.
func (s *GroupStore) HasInvitation(_ context.Context, groupID, accountID uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, i := range s.db.invitations {
		if i.GroupID == groupID && i.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

// RelatedAccountIDs implements store.GroupStore.
func (s *GroupStore) RelatedAccountIDs(_ context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	groups := make(map[uuid.UUID]bool)
	for _, m := range s.db.memberships {
		if m.AccountID == accountID {
			groups[m.GroupID] = true
		}
	}
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, m := range s.db.memberships {
		if groups[m.GroupID] && m.AccountID != accountID && !seen[m.AccountID] {
			seen[m.AccountID] = true
			out = append(out, m.AccountID)
		}
	}
	return out, nil
}

// CountMembersOfCreatedGroups implements store.GroupStore.
func (s *GroupStore) CountMembersOfCreatedGroups(_ context.Context, accountID uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	members := make(map[uuid.UUID]bool)
	for _, m := range s.db.memberships {
		g, ok := s.db.groups[m.GroupID]
		if ok && g.CreatedByID == accountID && m.AccountID != accountID {
			members[m.AccountID] = true
		}
	}
	return len(members), nil
}
