package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AwardType identifies a kind of award.
type AwardType string

// Award types.
const (
	AwardStudent           AwardType = "student"
	AwardMaster            AwardType = "master"
	AwardSharer            AwardType = "sharer"
	AwardTrendSetter       AwardType = "trend_setter"
	AwardAce               AwardType = "ace"
	AwardRecruiter         AwardType = "recruiter"
	AwardOrganizer         AwardType = "organizer"
	AwardAddict            AwardType = "addict"
	AwardConsistentLearner AwardType = "consistent_learner"
)

// Award is one level of an award held by an account.
type Award struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Type      AwardType `json:"type" db:"award_type"`
	Level     int       `json:"level" db:"level"`
	Created   time.Time `json:"created" db:"created"`
}

// NewAward creates an award.
func NewAward(accountID uuid.UUID, awardType AwardType, level int, now time.Time) *Award {
	return &Award{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      awardType,
		Level:     level,
		Created:   now.UTC(),
	}
}

// AwardDefinition describes an award type and the counts needed for each level.
type AwardDefinition struct {
	Type        AwardType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	// Thresholds[i] is the count needed for level i+1.
	Thresholds []int `json:"thresholds"`
}

// MaxLevel is the highest level of the award.
func (d AwardDefinition) MaxLevel() int {
	return len(d.Thresholds)
}

// LevelFor returns the level reached with count, 0 when no level is reached.
func (d AwardDefinition) LevelFor(count int) int {
	level := 0
	for i, t := range d.Thresholds {
		if count >= t {
			level = i + 1
		}
	}
	return level
}

// LevelDescription describes what level means for the award.
func (d AwardDefinition) LevelDescription(level int) string {
	if level < 1 || level > len(d.Thresholds) {
		return d.Description
	}
	if len(d.Thresholds) == 1 {
		return d.Description
	}
	return fmt.Sprintf("%s (%d)", d.Description, d.Thresholds[level-1])
}

var learningThresholds = []int{1, 10, 30, 100, 300, 1000, 3000, 10000}

// AwardCatalog lists every award in display order.
var AwardCatalog = []AwardDefinition{
	{Type: AwardStudent, Name: "Student", Description: "Verses started", Thresholds: learningThresholds},
	{Type: AwardMaster, Name: "Master", Description: "Verses fully learnt", Thresholds: learningThresholds},
	{Type: AwardSharer, Name: "Sharer", Description: "Public verse sets created", Thresholds: []int{1, 2, 5, 10, 20, 50}},
	{Type: AwardTrendSetter, Name: "Trend setter", Description: "Other people learning your verse sets", Thresholds: []int{5, 10, 20, 50, 100, 200, 500}},
	{Type: AwardAce, Name: "Ace", Description: "Consecutive tests with 100% accuracy", Thresholds: []int{1, 2, 4, 8, 16, 32, 64}},
	{Type: AwardRecruiter, Name: "Recruiter", Description: "People who joined through your referral", Thresholds: []int{1, 2, 3, 5, 10, 20, 50}},
	{Type: AwardOrganizer, Name: "Organizer", Description: "People in groups you created", Thresholds: []int{5, 10, 20, 50, 100}},
	{Type: AwardAddict, Name: "Addict", Description: "Tested verses during every hour of the day", Thresholds: []int{24}},
	{Type: AwardConsistentLearner, Name: "Consistent learner", Description: "Tested verses every day for a week", Thresholds: []int{7}},
}

// LookupAward returns the definition of awardType.
func LookupAward(awardType AwardType) (AwardDefinition, bool) {
	for _, d := range AwardCatalog {
		if d.Type == awardType {
			return d, true
		}
	}
	return AwardDefinition{}, false
}

// AwardCounters holds the counts that drive award levels.
type AwardCounters struct {
	VersesStarted      int
	VersesLearnt       int
	PublicSetsCreated  int
	SetLearners        int
	ConsecutivePerfect int
	Referrals          int
	GroupMembers       int
	DistinctTestHours  int
	RecentTestDays     int
}

// Count returns the counter relevant to awardType.
func (c AwardCounters) Count(awardType AwardType) int {
	switch awardType {
	case AwardStudent:
		return c.VersesStarted
	case AwardMaster:
		return c.VersesLearnt
	case AwardSharer:
		return c.PublicSetsCreated
	case AwardTrendSetter:
		return c.SetLearners
	case AwardAce:
		return c.ConsecutivePerfect
	case AwardRecruiter:
		return c.Referrals
	case AwardOrganizer:
		return c.GroupMembers
	case AwardAddict:
		return c.DistinctTestHours
	case AwardConsistentLearner:
		return c.RecentTestDays
	}
	return 0
}

// MissingAwards returns the awards reached by counters that are not in held.
// Levels below the current one are included so that no level is skipped.
func MissingAwards(accountID uuid.UUID, counters AwardCounters, held []*Award, now time.Time) []*Award {
	have := make(map[AwardType]map[int]bool)
	for _, a := range held {
		if have[a.Type] == nil {
			have[a.Type] = make(map[int]bool)
		}
		have[a.Type][a.Level] = true
	}

	var missing []*Award
	for _, def := range AwardCatalog {
		level := def.LevelFor(counters.Count(def.Type))
		for l := 1; l <= level; l++ {
			if !have[def.Type][l] {
				missing = append(missing, NewAward(accountID, def.Type, l, now))
			}
		}
	}
	return missing
}

// HighestLevels reduces awards to the highest level held per type.
func HighestLevels(awards []*Award) map[AwardType]int {
	out := make(map[AwardType]int)
	for _, a := range awards {
		if a.Level > out[a.Type] {
			out[a.Type] = a.Level
		}
	}
	return out
}
