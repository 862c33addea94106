package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SetType distinguishes hand-picked selections from contiguous passages.
type SetType string

// Verse set types.
const (
	SetTypeSelection SetType = "selection"
	SetTypePassage   SetType = "passage"
)

// VerseSet is a named collection of verses that can be learnt together.
type VerseSet struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	SetType     SetType   `json:"set_type" db:"set_type"`
	Public      bool      `json:"public" db:"public"`
	CreatedByID uuid.UUID `json:"created_by_id" db:"created_by_id"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
	Popularity  int       `json:"popularity" db:"popularity"`
	PassageRef  string    `json:"passage_ref,omitempty" db:"passage_ref"`
}

// VerseChoice is one reference within a verse set.
type VerseChoice struct {
	ID                uuid.UUID `json:"id" db:"id"`
	VerseSetID        uuid.UUID `json:"verse_set_id" db:"verse_set_id"`
	InternalReference string    `json:"reference" db:"internal_reference"`
	SetOrder          int       `json:"set_order" db:"set_order"`
}

// NewVerseSet validates the descriptive fields of a new set.
func NewVerseSet(name, description string, setType SetType, public bool, createdBy uuid.UUID, now time.Time) (*VerseSet, error) {
	vs := &VerseSet{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		SetType:     setType,
		Public:      public,
		CreatedByID: createdBy,
		DateAdded:   now.UTC(),
	}
	if vs.Name == "" {
		return nil, NewValidationError("name", "is required", nil)
	}
	if len(vs.Name) > 255 {
		return nil, NewValidationError("name", "is too long", nil)
	}
	if setType != SetTypeSelection && setType != SetTypePassage {
		return nil, NewValidationError("set_type", "must be selection or passage", nil)
	}
	if createdBy == uuid.Nil {
		return nil, NewValidationError("created_by", "is required", ErrInvalidID)
	}
	return vs, nil
}
