package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// MemoryStage tracks how far a learner has got with a verse.
type MemoryStage int

// Memory stages.
const (
	MemoryStageZero   MemoryStage = 0
	MemoryStageSeen   MemoryStage = 1
	MemoryStageTested MemoryStage = 2
)

// UserVerseStatus is one verse being learnt by an account.
type UserVerseStatus struct {
	ID                   uuid.UUID     `json:"id" db:"id"`
	AccountID            uuid.UUID     `json:"account_id" db:"account_id"`
	VersionID            uuid.UUID     `json:"version_id" db:"version_id"`
	LocalizedReference   string        `json:"reference" db:"localized_reference"`
	InternalReference    string        `json:"internal_reference" db:"internal_reference"`
	VerseSetID           uuid.NullUUID `json:"verse_set_id" db:"verse_set_id"`
	TextOrder            int           `json:"text_order" db:"text_order"`
	MemoryStage          MemoryStage   `json:"memory_stage" db:"memory_stage"`
	Strength             float64       `json:"strength" db:"strength"`
	Added                time.Time     `json:"added" db:"added"`
	FirstSeen            null.Time     `json:"first_seen" db:"first_seen"`
	LastTested           null.Time     `json:"last_tested" db:"last_tested"`
	NextTestDue          null.Time     `json:"next_test_due" db:"next_test_due"`
	Ignored              bool          `json:"ignored" db:"ignored"`
	EarlyReviewRequested bool          `json:"early_review_requested" db:"early_review_requested"`
}

// NewUserVerseStatus creates a status at stage zero.
func NewUserVerseStatus(accountID, versionID uuid.UUID, verse *Verse, verseSetID uuid.NullUUID, textOrder int, now time.Time) *UserVerseStatus {
	return &UserVerseStatus{
		ID:                 uuid.New(),
		AccountID:          accountID,
		VersionID:          versionID,
		LocalizedReference: verse.LocalizedReference,
		InternalReference:  verse.Reference().Canonical(),
		VerseSetID:         verseSetID,
		TextOrder:          textOrder,
		MemoryStage:        MemoryStageZero,
		Added:              now.UTC(),
	}
}

// IsDue reports whether the verse should be reviewed at now.
func (s *UserVerseStatus) IsDue(now time.Time) bool {
	if s.Ignored || s.MemoryStage < MemoryStageTested {
		return false
	}
	if s.EarlyReviewRequested {
		return true
	}
	return s.NextTestDue.Valid && !s.NextTestDue.Time.After(now)
}

// MarkSeen moves a status to the seen stage. It is a no-op once tested.
func (s *UserVerseStatus) MarkSeen(now time.Time) {
	if s.MemoryStage >= MemoryStageSeen {
		return
	}
	s.MemoryStage = MemoryStageSeen
	s.FirstSeen = null.TimeFrom(now.UTC())
}

// Reset returns the status to stage zero.
func (s *UserVerseStatus) Reset() {
	s.MemoryStage = MemoryStageZero
	s.Strength = 0
	s.FirstSeen = null.Time{}
	s.LastTested = null.Time{}
	s.NextTestDue = null.Time{}
	s.EarlyReviewRequested = false
	s.Ignored = false
}

// LearningProgress summarises an account's learning.
type LearningProgress struct {
	Started int `json:"started" db:"started"`
	Tested  int `json:"tested" db:"tested"`
	Learnt  int `json:"learnt" db:"learnt"`
	Due     int `json:"due" db:"due"`
}

// TestResult reports what happened when a verse was tested.
type TestResult struct {
	Statuses     []*UserVerseStatus `json:"statuses"`
	Strength     float64            `json:"strength"`
	NextTestDue  time.Time          `json:"next_test_due"`
	PointsEarned int                `json:"points_earned"`
	BecameLearnt bool               `json:"became_learnt"`
}

// TestRecord is a single test of a verse. The history drives the Ace,
// Addict and Consistent learner awards.
type TestRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	StatusID  uuid.UUID `json:"status_id" db:"status_id"`
	Accuracy  float64   `json:"accuracy" db:"accuracy"`
	Created   time.Time `json:"created" db:"created"`
}

// NewTestRecord creates a test record.
func NewTestRecord(accountID, statusID uuid.UUID, accuracy float64, now time.Time) *TestRecord {
	return &TestRecord{
		ID:        uuid.New(),
		AccountID: accountID,
		StatusID:  statusID,
		Accuracy:  accuracy,
		Created:   now.UTC(),
	}
}
