package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestLearningService_AddVerse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "John 3:16-17", "")
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, "John 3:16", added[0].InternalReference)
	assert.Equal(t, domain.MemoryStageZero, added[0].MemoryStage)
	assert.False(t, added[0].VerseSetID.Valid)

	again, err := svc.AddVerse(ctx, a.ID, "John 3:16", "KJV")
	require.NoError(t, err)
	assert.Empty(t, again)

	_, err = svc.AddVerse(ctx, a.ID, "not a verse", "")
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	assert.Equal(t, []uuid.UUID{a.ID}, f.recomputedFor())
}

func TestLearningService_MarkSeen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	b := f.addAccount(t, "bob")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)

	_, err = svc.MarkSeen(ctx, b.ID, added[0].ID)
	assert.ErrorIs(t, err, service.ErrNotOwned)

	seen, err := svc.MarkSeen(ctx, a.ID, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemoryStageSeen, seen.MemoryStage)
	assert.Equal(t, f.now, seen.FirstSeen.Time)

	_, err = svc.MarkSeen(ctx, a.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrStatusNotFound)
}

func TestLearningService_RecordFirstTest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)

	result, err := svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	require.NoError(t, err)

	// 9 words at 20 points, plus the 50% perfect bonus.
	assert.Equal(t, 270, result.PointsEarned)
	assert.InDelta(t, 0.1, result.Strength, 1e-9)
	assert.False(t, result.BecameLearnt)
	assert.True(t, result.NextTestDue.After(f.now))

	require.Len(t, result.Statuses, 1)
	st := result.Statuses[0]
	assert.Equal(t, domain.MemoryStageTested, st.MemoryStage)
	assert.Equal(t, f.now, st.LastTested.Time)
	assert.True(t, st.FirstSeen.Valid)

	assert.Equal(t, 270, f.account(t, a.ID).TotalScore)
	assert.Len(t, f.db.ScoreLogs(), 2)
	assert.Len(t, f.db.TestRecords(), 1)
	assert.Equal(t, []uuid.UUID{a.ID, a.ID}, f.recomputedFor())
}

func TestLearningService_RecordTestAppliesToEverySet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	sets := service.NewVerseSetService(f.deps())
	svc := service.NewLearningService(f.deps())

	for _, name := range []string{"One", "Two"} {
		d, err := sets.Create(ctx, a.ID, selection(name, false, "John 3:16"))
		require.NoError(t, err)
		_, err = sets.StartLearning(ctx, a.ID, d.Set.Slug, "")
		require.NoError(t, err)
	}

	queue, err := svc.Queue(ctx, a.ID, service.QueueNew)
	require.NoError(t, err)
	require.Len(t, queue, 1, "the same verse is queued once")

	result, err := svc.RecordTest(ctx, a.ID, queue[0].ID, 0.8)
	require.NoError(t, err)
	assert.Len(t, result.Statuses, 2)
	// 25 words * 20 * 0.8
	assert.Equal(t, 400, result.PointsEarned)

	progress, err := svc.Progress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Started)
	assert.Equal(t, 1, progress.Tested)
	assert.Zero(t, progress.Learnt)
}

func TestLearningService_RecordTestBecomesLearnt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)

	st := added[0]
	st.MemoryStage = domain.MemoryStageTested
	st.Strength = 0.84
	st.LastTested = null.TimeFrom(f.now.Add(-200 * 24 * time.Hour))
	require.NoError(t, f.db.Stores().Learning.Update(ctx, st))

	result, err := svc.RecordTest(ctx, a.ID, st.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.BecameLearnt)
	assert.Greater(t, result.Strength, 0.85)

	// review 9*10, bonus 45, learnt 9*40
	assert.Equal(t, 90+45+360, result.PointsEarned)

	progress, err := svc.Progress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Learnt)
}

func TestLearningService_RecordTestErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	b := f.addAccount(t, "bob")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)
	before := len(f.emitter.Events())

	_, err = svc.RecordTest(ctx, a.ID, added[0].ID, 1.5)
	assert.ErrorIs(t, err, domain.ErrInvalidAccuracy)

	_, err = svc.RecordTest(ctx, b.ID, added[0].ID, 1)
	assert.ErrorIs(t, err, service.ErrNotOwned)

	assert.Len(t, f.emitter.Events(), before)
	assert.Empty(t, f.db.TestRecords())
}

func TestLearningService_ReviewQueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1-2", "")
	require.NoError(t, err)

	result, err := svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	require.NoError(t, err)

	review, err := svc.Queue(ctx, a.ID, service.QueueReview)
	require.NoError(t, err)
	assert.Empty(t, review)

	require.NoError(t, svc.RequestEarlyReview(ctx, a.ID, added[0].ID))
	review, err = svc.Queue(ctx, a.ID, service.QueueReview)
	require.NoError(t, err)
	require.Len(t, review, 1)

	f.now = result.NextTestDue.Add(time.Minute)
	_, err = svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	require.NoError(t, err)

	f.now = f.now.Add(365 * 24 * time.Hour)
	review, err = svc.Queue(ctx, a.ID, service.QueueReview)
	require.NoError(t, err)
	require.Len(t, review, 1)
	assert.False(t, review[0].EarlyReviewRequested)

	fresh, err := svc.Queue(ctx, a.ID, service.QueueNew)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Psalm 23:2", fresh[0].InternalReference)

	_, err = svc.Queue(ctx, a.ID, "sometime")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLearningService_CancelAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "John 3:16-17", "")
	require.NoError(t, err)
	_, err = svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ResetProgress(ctx, a.ID, added[0].ID))
	st, err := f.db.Stores().Learning.GetByID(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemoryStageZero, st.MemoryStage)
	assert.Zero(t, st.Strength)
	assert.False(t, st.NextTestDue.Valid)

	require.NoError(t, svc.CancelLearning(ctx, a.ID, added[1].ID))
	progress, err := svc.Progress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Started)
	assert.Zero(t, progress.Tested)

	assert.ErrorIs(t, svc.CancelLearning(ctx, uuid.New(), added[0].ID), service.ErrNotOwned)
}

func TestLearningService_AddVerseAfterCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)
	_, err = svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.CancelLearning(ctx, a.ID, added[0].ID))

	again, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, added[0].ID, again[0].ID)

	st, err := f.db.Stores().Learning.GetByID(ctx, added[0].ID)
	require.NoError(t, err)
	assert.False(t, st.Ignored)
	assert.Equal(t, domain.MemoryStageZero, st.MemoryStage)
	assert.Zero(t, st.Strength)
	assert.False(t, st.LastTested.Valid)

	fresh, err := svc.Queue(ctx, a.ID, service.QueueNew)
	require.NoError(t, err)
	require.Len(t, fresh, 1)

	progress, err := svc.Progress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Started)
	assert.Zero(t, progress.Tested)
}

func TestLearningService_CancelledStatusIsInactive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	added, err := svc.AddVerse(ctx, a.ID, "Psalm 23:1", "")
	require.NoError(t, err)
	require.NoError(t, svc.CancelLearning(ctx, a.ID, added[0].ID))
	before := len(f.emitter.Events())

	_, err = svc.RecordTest(ctx, a.ID, added[0].ID, 1)
	assert.ErrorIs(t, err, store.ErrStatusNotFound)
	_, err = svc.MarkSeen(ctx, a.ID, added[0].ID)
	assert.ErrorIs(t, err, store.ErrStatusNotFound)
	assert.ErrorIs(t, svc.RequestEarlyReview(ctx, a.ID, added[0].ID), store.ErrStatusNotFound)

	assert.Empty(t, f.db.TestRecords())
	assert.Empty(t, f.db.ScoreLogs())
	assert.Zero(t, f.account(t, a.ID).TotalScore)
	assert.Len(t, f.emitter.Events(), before)

	st, err := f.db.Stores().Learning.GetByID(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemoryStageZero, st.MemoryStage)
}

func TestLearningService_RecordTestRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	a := f.addAccount(t, "alice")
	svc := service.NewLearningService(f.deps())

	// The verse text lookup fails after the status has been updated.
	status := &domain.UserVerseStatus{
		ID:                 uuid.New(),
		AccountID:          a.ID,
		VersionID:          f.kjv.ID,
		LocalizedReference: "Nowhere 1:1",
		InternalReference:  "Nowhere 1:1",
		Added:              f.now,
	}
	created, err := f.db.Stores().Learning.Create(ctx, status)
	require.NoError(t, err)
	require.True(t, created)

	_, err = svc.RecordTest(ctx, a.ID, status.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	st, err := f.db.Stores().Learning.GetByID(ctx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemoryStageZero, st.MemoryStage)
	assert.False(t, st.LastTested.Valid)
	assert.Empty(t, f.db.TestRecords())
	assert.Empty(t, f.db.ScoreLogs())
}
