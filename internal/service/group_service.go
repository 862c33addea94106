package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// GroupPageSize is the number of groups per list page.
const GroupPageSize = 30

// GroupInput holds the editable fields of a group.
type GroupInput struct {
	Name        string
	Description string
	Public      bool
	Open        bool
}

// GroupService manages groups, memberships and invitations.
type GroupService interface {
	Create(ctx context.Context, accountID uuid.UUID, in GroupInput) (*domain.Group, error)

	// Update is allowed for the creator and for moderators.
	Update(ctx context.Context, accountID uuid.UUID, slug string, in GroupInput) (*domain.Group, error)

	// Get returns a group visible to viewerID. Private groups are visible to
	// members, invitees and moderators only.
	Get(ctx context.Context, viewerID uuid.UUID, slug string) (*domain.Group, error)

	List(ctx context.Context, viewerID uuid.UUID, page int) ([]*domain.Group, error)

	// Join adds the account to an open group, or to a private one it was invited to.
	Join(ctx context.Context, accountID uuid.UUID, slug string) error

	Leave(ctx context.Context, accountID uuid.UUID, slug string) error

	// Invite records an invitation for username and emails it.
	Invite(ctx context.Context, inviterID uuid.UUID, slug, username string) error

	Members(ctx context.Context, viewerID uuid.UUID, slug string) ([]*domain.GroupMember, error)
	Leaderboard(ctx context.Context, viewerID uuid.UUID, slug string, period domain.LeaderboardPeriod, page int) ([]*domain.LeaderboardEntry, error)
}

type groupService struct {
	deps    Deps
	scores  ScoreService
	baseURL string
}

// NewGroupService creates a GroupService. baseURL prefixes links in invitation emails.
func NewGroupService(deps Deps, scores ScoreService, baseURL string) GroupService {
	return &groupService{
		deps:    deps.withComponent("group_service"),
		scores:  scores,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func isModerator(ctx context.Context, st store.Stores, accountID uuid.UUID) (bool, error) {
	a, err := st.Accounts.GetByID(ctx, accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.IsModerator, nil
}

// visibleGroup loads a group and hides private groups from outsiders.
func visibleGroup(ctx context.Context, st store.Stores, viewerID uuid.UUID, slug string) (*domain.Group, error) {
	g, err := st.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if g.Public || g.CreatedByID == viewerID {
		return g, nil
	}
	checks := []func() (bool, error){
		func() (bool, error) { return st.Groups.IsMember(ctx, g.ID, viewerID) },
		func() (bool, error) { return st.Groups.HasInvitation(ctx, g.ID, viewerID) },
		func() (bool, error) { return isModerator(ctx, st, viewerID) },
	}
	for _, check := range checks {
		ok, err := check()
		if err != nil {
			return nil, err
		}
		if ok {
			return g, nil
		}
	}
	return nil, store.ErrGroupNotFound
}

func (s *groupService) Create(ctx context.Context, accountID uuid.UUID, in GroupInput) (*domain.Group, error) {
	now := s.deps.now()
	g, err := domain.NewGroup(in.Name, in.Description, in.Public, in.Open, accountID, now)
	if err != nil {
		return nil, err
	}

	err = s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if g.Slug, err = uniqueSlug(ctx, domain.Slugify(g.Name), st.Groups.SlugExists); err != nil {
			return err
		}
		if err := st.Groups.Create(ctx, g); err != nil {
			return err
		}
		if _, err := st.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, AccountID: accountID, Created: now}); err != nil {
			return err
		}
		return st.Events.Create(ctx, domain.NewGroupCreatedEvent(account, g, now))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	s.deps.log(ctx).Info("group created", "group_id", g.ID, "slug", g.Slug)
	return g, nil
}

func (s *groupService) Update(ctx context.Context, accountID uuid.UUID, slug string, in GroupInput) (*domain.Group, error) {
	var g *domain.Group
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		if g, err = st.Groups.GetBySlug(ctx, slug); err != nil {
			return err
		}
		if g.CreatedByID != accountID {
			mod, err := isModerator(ctx, st, accountID)
			if err != nil {
				return err
			}
			if !mod {
				return ErrForbidden
			}
		}
		updated, err := domain.NewGroup(in.Name, in.Description, in.Public, in.Open, g.CreatedByID, g.Created)
		if err != nil {
			return err
		}
		g.Name, g.Description, g.Public, g.Open = updated.Name, updated.Description, updated.Public, updated.Open
		return st.Groups.Update(ctx, g)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return g, nil
}

func (s *groupService) Get(ctx context.Context, viewerID uuid.UUID, slug string) (*domain.Group, error) {
	g, err := visibleGroup(ctx, s.deps.UoW.Stores(), viewerID, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	return g, nil
}

func (s *groupService) List(ctx context.Context, viewerID uuid.UUID, page int) ([]*domain.Group, error) {
	groups, err := s.deps.UoW.Stores().Groups.ListVisible(ctx, viewerID, GroupPageSize, pageOffset(page, GroupPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) Join(ctx context.Context, accountID uuid.UUID, slug string) error {
	now := s.deps.now()
	var g *domain.Group
	var joined bool

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		var err error
		if g, err = visibleGroup(ctx, st, accountID, slug); err != nil {
			return err
		}
		if !g.Open {
			invited, err := st.Groups.HasInvitation(ctx, g.ID, accountID)
			if err != nil {
				return err
			}
			if !invited {
				return ErrNotInvited
			}
		}
		account, err := st.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if joined, err = st.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, AccountID: accountID, Created: now}); err != nil {
			return err
		}
		if !joined {
			return nil
		}
		return st.Events.Create(ctx, domain.NewGroupJoinedEvent(account, g, now))
	})
	if err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}
	if joined {
		s.deps.emit(ctx, s.deps.recomputeAwards(ctx, g.CreatedByID)...)
	}
	return nil
}

func (s *groupService) Leave(ctx context.Context, accountID uuid.UUID, slug string) error {
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		g, err := st.Groups.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if g.CreatedByID == accountID {
			return ErrCreatorCannotLeave
		}
		return st.Groups.RemoveMember(ctx, g.ID, accountID)
	})
	if err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	return nil
}

func (s *groupService) Invite(ctx context.Context, inviterID uuid.UUID, slug, username string) error {
	now := s.deps.now()
	var msg *email.Message

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		g, err := visibleGroup(ctx, st, inviterID, slug)
		if err != nil {
			return err
		}
		member, err := st.Groups.IsMember(ctx, g.ID, inviterID)
		if err != nil {
			return err
		}
		if g.CreatedByID != inviterID && !(g.Open && member) {
			return ErrForbidden
		}

		inviter, err := st.Accounts.GetByID(ctx, inviterID)
		if err != nil {
			return err
		}
		invitee, err := st.Accounts.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		err = st.Groups.CreateInvitation(ctx, &domain.Invitation{
			GroupID:     g.ID,
			AccountID:   invitee.ID,
			CreatedByID: inviterID,
			Created:     now,
		})
		if err != nil {
			return err
		}

		if !invitee.CanReceiveEmail() {
			return nil
		}
		members, err := st.Groups.MemberIDs(ctx, g.ID)
		if err != nil {
			return err
		}
		msg = &email.Message{
			To:           invitee.Email,
			TemplateName: email.TemplateGroupInvitation,
			TemplateData: map[string]any{
				"Name":        invitee.DisplayName(),
				"InvitedBy":   inviter.DisplayName(),
				"GroupName":   g.Name,
				"MemberCount": len(members),
				"URL":         fmt.Sprintf("%s/groups/%s/", s.baseURL, g.Slug),
			},
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invite to group: %w", err)
	}

	if msg != nil {
		ev, err := events.NewSendEmail(*msg)
		if err != nil {
			return fmt.Errorf("failed to queue invitation: %w", err)
		}
		s.deps.emit(ctx, ev)
	}
	return nil
}

func (s *groupService) Members(ctx context.Context, viewerID uuid.UUID, slug string) ([]*domain.GroupMember, error) {
	st := s.deps.UoW.Stores()
	g, err := visibleGroup(ctx, st, viewerID, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	members, err := st.Groups.ListMembers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *groupService) Leaderboard(ctx context.Context, viewerID uuid.UUID, slug string, period domain.LeaderboardPeriod, page int) ([]*domain.LeaderboardEntry, error) {
	st := s.deps.UoW.Stores()
	g, err := visibleGroup(ctx, st, viewerID, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	ids, err := st.Groups.MemberIDs(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return s.scores.Leaderboard(ctx, LeaderboardRequest{Period: period, AccountIDs: ids, Page: page})
}
