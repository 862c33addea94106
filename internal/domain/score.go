package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScoreReason records why points were awarded.
type ScoreReason string

// Score reasons.
const (
	ScoreReasonVerseTested      ScoreReason = "verse_tested"
	ScoreReasonVerseReviewed    ScoreReason = "verse_reviewed"
	ScoreReasonPerfectTestBonus ScoreReason = "perfect_test_bonus"
	ScoreReasonVerseLearnt      ScoreReason = "verse_learnt"
	ScoreReasonEarnedAward      ScoreReason = "earned_award"
)

// Point rates per word.
const (
	PointsPerWordFirstTest = 20
	PointsPerWordReview    = 10
	PointsPerWordLearnt    = PointsPerWordFirstTest * 2
	PointsPerAwardLevel    = 100
	PerfectTestBonusFactor = 0.5
)

// ScoreLog is one entry in an account's points history.
type ScoreLog struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	AccountID uuid.UUID   `json:"account_id" db:"account_id"`
	Points    int         `json:"points" db:"points"`
	Reason    ScoreReason `json:"reason" db:"reason"`
	Accuracy  float64     `json:"accuracy" db:"accuracy"`
	Created   time.Time   `json:"created" db:"created"`
}

// NewScoreLog creates a score log entry.
func NewScoreLog(accountID uuid.UUID, points int, reason ScoreReason, accuracy float64, now time.Time) *ScoreLog {
	return &ScoreLog{
		ID:        uuid.New(),
		AccountID: accountID,
		Points:    points,
		Reason:    reason,
		Accuracy:  accuracy,
		Created:   now.UTC(),
	}
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TestScores returns the score logs earned for one test of a verse with the
// given number of words. becameLearnt is true when this test moved the verse
// over the learnt threshold.
func TestScores(accountID uuid.UUID, words int, accuracy float64, firstTest, becameLearnt bool, now time.Time) []*ScoreLog {
	rate, reason := PointsPerWordReview, ScoreReasonVerseReviewed
	if firstTest {
		rate, reason = PointsPerWordFirstTest, ScoreReasonVerseTested
	}

	base := int(math.Round(float64(words*rate) * accuracy))
	var logs []*ScoreLog
	if base > 0 {
		logs = append(logs, NewScoreLog(accountID, base, reason, accuracy, now))
	}
	if accuracy == 1 && base > 0 {
		bonus := int(math.Round(float64(base) * PerfectTestBonusFactor))
		logs = append(logs, NewScoreLog(accountID, bonus, ScoreReasonPerfectTestBonus, accuracy, now))
	}
	if becameLearnt && words > 0 {
		logs = append(logs, NewScoreLog(accountID, words*PointsPerWordLearnt, ScoreReasonVerseLearnt, accuracy, now))
	}
	return logs
}

// AwardPoints is the number of points granted for reaching an award level.
func AwardPoints(level int) int {
	return level * PointsPerAwardLevel
}

// TotalPoints sums the points of logs.
func TotalPoints(logs []*ScoreLog) int {
	total := 0
	for _, l := range logs {
		total += l.Points
	}
	return total
}

// CrossedMilestone returns the highest milestone in the 1-2-5 series starting
// at base that lies in (before, after]. It returns 0 when none was crossed.
func CrossedMilestone(base, before, after int) int {
	if after <= before || base <= 0 {
		return 0
	}
	crossed := 0
	for m := range milestoneSeries(base, after) {
		if m > before && m <= after {
			crossed = m
		}
	}
	return crossed
}

// milestoneSeries yields base, 2*base, 5*base, 10*base, ... up to limit.
func milestoneSeries(base, limit int) func(func(int) bool) {
	return func(yield func(int) bool) {
		for mag := base; mag <= limit; mag *= 10 {
			for _, f := range []int{1, 2, 5} {
				m := mag * f
				if m > limit {
					return
				}
				if !yield(m) {
					return
				}
			}
		}
	}
}

// Milestone bases.
const (
	PointsMilestoneBase = 1000
	VersesMilestoneBase = 10
)

// LeaderboardPeriod selects the time range of a leaderboard.
type LeaderboardPeriod string

// Leaderboard periods.
const (
	LeaderboardAllTime LeaderboardPeriod = "all"
	LeaderboardWeek    LeaderboardPeriod = "week"
)

// Valid reports whether p is a known period.
func (p LeaderboardPeriod) Valid() bool {
	return p == LeaderboardAllTime || p == LeaderboardWeek
}

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank      int       `json:"rank" db:"-"`
	AccountID uuid.UUID `json:"account_id" db:"account_id"`
	Username  string    `json:"username" db:"username"`
	Points    int       `json:"points" db:"points"`
}
