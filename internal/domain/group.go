package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is a set of accounts that can share a leaderboard and a comment wall.
type Group struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedByID uuid.UUID `json:"created_by_id" db:"created_by_id"`
	Public      bool      `json:"public" db:"public"`
	Open        bool      `json:"open" db:"open"`
	Created     time.Time `json:"created" db:"created"`
}

// NewGroup validates and creates a group.
func NewGroup(name, description string, public, open bool, createdBy uuid.UUID, now time.Time) (*Group, error) {
	g := &Group{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedByID: createdBy,
		Public:      public,
		Open:        open,
		Created:     now.UTC(),
	}
	if g.Name == "" {
		return nil, NewValidationError("name", "is required", nil)
	}
	if len(g.Name) > 255 {
		return nil, NewValidationError("name", "is too long", nil)
	}
	if createdBy == uuid.Nil {
		return nil, NewValidationError("created_by", "is required", ErrInvalidID)
	}
	return g, nil
}

// Membership links an account to a group.
type Membership struct {
	GroupID   uuid.UUID `json:"group_id" db:"group_id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Created   time.Time `json:"created" db:"created"`
}

// Invitation allows an account to join a private group.
type Invitation struct {
	GroupID     uuid.UUID `json:"group_id" db:"group_id"`
	AccountID   uuid.UUID `json:"account_id" db:"account_id"`
	CreatedByID uuid.UUID `json:"created_by_id" db:"created_by_id"`
	Created     time.Time `json:"created" db:"created"`
}

// GroupMember is a member listing entry.
type GroupMember struct {
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Username  string    `json:"username" db:"username"`
	Joined    time.Time `json:"joined" db:"created"`
}
