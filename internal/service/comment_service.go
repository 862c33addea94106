package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// CommentService manages comments on events and group walls.
type CommentService interface {
	// AddToEvent comments on an event and records a NEW_COMMENT event
	// whose parent is the commented event.
	AddToEvent(ctx context.Context, authorID, eventID uuid.UUID, message string) (*domain.Comment, error)

	// AddToGroupWall posts on a group wall. Non-members may only post on
	// public groups.
	AddToGroupWall(ctx context.Context, authorID uuid.UUID, slug, message string) (*domain.Comment, error)

	ListForEvent(ctx context.Context, viewerID, eventID uuid.UUID) ([]*domain.Comment, error)
	ListForGroup(ctx context.Context, viewerID uuid.UUID, slug string) ([]*domain.Comment, error)

	// Hide hides a comment. Moderators only.
	Hide(ctx context.Context, moderatorID, commentID uuid.UUID) error
}

type commentService struct {
	deps Deps
}

// NewCommentService creates a CommentService.
func NewCommentService(deps Deps) CommentService {
	return &commentService{deps: deps.withComponent("comment_service")}
}

func commentingAuthor(ctx context.Context, st store.Stores, authorID uuid.UUID) (*domain.Account, error) {
	author, err := st.Accounts.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if !author.EnableCommenting {
		return nil, ErrCommentingDisabled
	}
	return author, nil
}

// visibleEvent loads an event, reporting events viewerID may not see as not
// found.
func visibleEvent(ctx context.Context, st store.Stores, viewerID, eventID uuid.UUID) (*domain.Event, error) {
	e, err := st.Events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.VisibleTo(viewerID) {
		return nil, store.ErrEventNotFound
	}
	return e, nil
}

func (s *commentService) AddToEvent(ctx context.Context, authorID, eventID uuid.UUID, message string) (*domain.Comment, error) {
	now := s.deps.now()
	var comment *domain.Comment

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		author, err := commentingAuthor(ctx, st, authorID)
		if err != nil {
			return err
		}
		parent, err := visibleEvent(ctx, st, authorID, eventID)
		if err != nil {
			return err
		}
		if comment, err = domain.NewEventComment(authorID, parent.ID, message, now); err != nil {
			return err
		}
		if err := st.Comments.Create(ctx, comment); err != nil {
			return err
		}
		return st.Events.Create(ctx, domain.NewCommentEvent(author, comment, parent, now))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) AddToGroupWall(ctx context.Context, authorID uuid.UUID, slug, message string) (*domain.Comment, error) {
	now := s.deps.now()
	var comment *domain.Comment

	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		if _, err := commentingAuthor(ctx, st, authorID); err != nil {
			return err
		}
		g, err := visibleGroup(ctx, st, authorID, slug)
		if err != nil {
			return err
		}
		if !g.Public {
			member, err := st.Groups.IsMember(ctx, g.ID, authorID)
			if err != nil {
				return err
			}
			if !member {
				return ErrNotMember
			}
		}
		if comment, err = domain.NewGroupComment(authorID, g.ID, message, now); err != nil {
			return err
		}
		return st.Comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) ListForEvent(ctx context.Context, viewerID, eventID uuid.UUID) ([]*domain.Comment, error) {
	st := s.deps.UoW.Stores()
	if _, err := visibleEvent(ctx, st, viewerID, eventID); err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	comments, err := st.Comments.ListForEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return s.visible(ctx, st, viewerID, comments)
}

func (s *commentService) ListForGroup(ctx context.Context, viewerID uuid.UUID, slug string) ([]*domain.Comment, error) {
	st := s.deps.UoW.Stores()
	g, err := visibleGroup(ctx, st, viewerID, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}
	comments, err := st.Comments.ListForGroup(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return s.visible(ctx, st, viewerID, comments)
}

func (s *commentService) visible(ctx context.Context, st store.Stores, viewerID uuid.UUID, comments []*domain.Comment) ([]*domain.Comment, error) {
	mod, err := isModerator(ctx, st, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %w", err)
	}
	return domain.VisibleComments(comments, viewerID, mod), nil
}

func (s *commentService) Hide(ctx context.Context, moderatorID, commentID uuid.UUID) error {
	err := s.deps.UoW.Do(ctx, func(ctx context.Context, st store.Stores) error {
		mod, err := isModerator(ctx, st, moderatorID)
		if err != nil {
			return err
		}
		if !mod {
			return ErrForbidden
		}
		return st.Comments.SetHidden(ctx, commentID, true)
	})
	if err != nil {
		return fmt.Errorf("failed to hide comment: %w", err)
	}
	s.deps.log(ctx).Info("comment hidden", "comment_id", commentID, "moderator_id", moderatorID)
	return nil
}
