package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardLevelFor(t *testing.T) {
	t.Parallel()

	student, ok := LookupAward(AwardStudent)
	require.True(t, ok)
	assert.Equal(t, 0, student.LevelFor(0))
	assert.Equal(t, 1, student.LevelFor(1))
	assert.Equal(t, 2, student.LevelFor(29))
	assert.Equal(t, 3, student.LevelFor(30))
	assert.Equal(t, 8, student.LevelFor(50000))

	addict, ok := LookupAward(AwardAddict)
	require.True(t, ok)
	assert.Equal(t, 1, addict.MaxLevel())
	assert.Equal(t, 0, addict.LevelFor(23))
	assert.Equal(t, 1, addict.LevelFor(24))
}

func TestMissingAwards(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	now := time.Now()

	held := []*Award{NewAward(id, AwardStudent, 1, now)}
	counters := AwardCounters{VersesStarted: 12, Referrals: 1, RecentTestDays: 6}

	missing := MissingAwards(id, counters, held, now)
	require.Len(t, missing, 2)
	assert.Equal(t, AwardStudent, missing[0].Type)
	assert.Equal(t, 2, missing[0].Level)
	assert.Equal(t, AwardRecruiter, missing[1].Type)
	assert.Equal(t, 1, missing[1].Level)
}

func TestMissingAwardsFillsSkippedLevels(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	missing := MissingAwards(id, AwardCounters{ConsecutivePerfect: 8}, nil, time.Now())
	levels := make([]int, 0, len(missing))
	for _, a := range missing {
		assert.Equal(t, AwardAce, a.Type)
		levels = append(levels, a.Level)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, levels)
	assert.Equal(t, map[AwardType]int{AwardAce: 4}, HighestLevels(missing))
}
