package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxCommentLength is the longest comment accepted.
const MaxCommentLength = 10000

// Comment is a message on an event or on a group wall.
type Comment struct {
	ID       uuid.UUID     `json:"id" db:"id"`
	AuthorID uuid.UUID     `json:"author_id" db:"author_id"`
	EventID  uuid.NullUUID `json:"event_id" db:"event_id"`
	GroupID  uuid.NullUUID `json:"group_id" db:"group_id"`
	Message  string        `json:"message" db:"message"`
	Created  time.Time     `json:"created" db:"created"`
	Hidden   bool          `json:"hidden" db:"hidden"`

	AuthorUsername   string `json:"author,omitempty" db:"author_username"`
	AuthorHellbanned bool   `json:"-" db:"author_hellbanned"`
}

// NewEventComment creates a comment attached to an event.
func NewEventComment(authorID, eventID uuid.UUID, message string, now time.Time) (*Comment, error) {
	return newComment(authorID, uuid.NullUUID{UUID: eventID, Valid: true}, uuid.NullUUID{}, message, now)
}

// NewGroupComment creates a comment on a group wall.
func NewGroupComment(authorID, groupID uuid.UUID, message string, now time.Time) (*Comment, error) {
	return newComment(authorID, uuid.NullUUID{}, uuid.NullUUID{UUID: groupID, Valid: true}, message, now)
}

func newComment(authorID uuid.UUID, eventID, groupID uuid.NullUUID, message string, now time.Time) (*Comment, error) {
	c := &Comment{
		ID:       uuid.New(),
		AuthorID: authorID,
		EventID:  eventID,
		GroupID:  groupID,
		Message:  strings.TrimSpace(message),
		Created:  now.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the comment.
func (c *Comment) Validate() error {
	if c.AuthorID == uuid.Nil {
		return NewValidationError("author_id", "is required", ErrInvalidID)
	}
	if c.Message == "" {
		return ErrEmptyContent
	}
	if len([]rune(c.Message)) > MaxCommentLength {
		return NewValidationError("message", "is too long", nil)
	}
	if c.EventID.Valid == c.GroupID.Valid {
		return NewValidationError("target", "must be exactly one of event or group", nil)
	}
	return nil
}

// VisibleComments filters out hidden comments (unless showHidden) and
// comments by hellbanned authors other than viewer.
func VisibleComments(comments []*Comment, viewer uuid.UUID, showHidden bool) []*Comment {
	out := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if c.Hidden && !showHidden {
			continue
		}
		if c.AuthorHellbanned && c.AuthorID != viewer {
			continue
		}
		out = append(out, c)
	}
	return out
}
