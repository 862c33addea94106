package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection(name string, public bool, refs ...string) service.VerseSetInput {
	return service.VerseSetInput{
		Name:       name,
		SetType:    domain.SetTypeSelection,
		Public:     public,
		References: refs,
	}
}

func TestVerseSetService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("selection", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		detail, err := svc.Create(ctx, owner.ID, selection("Gospel Basics", true, "jn 3:16", "Psalm 23:1"))
		require.NoError(t, err)

		assert.Equal(t, "gospel-basics", detail.Set.Slug)
		require.Len(t, detail.Choices, 2)
		assert.Equal(t, "John 3:16", detail.Choices[0].InternalReference)
		assert.Equal(t, "Psalm 23:1", detail.Choices[1].InternalReference)
		assert.Equal(t, 1, detail.Choices[1].SetOrder)

		require.Len(t, f.eventsOfType(domain.EventVerseSetCreated), 1)
		assert.Equal(t, []uuid.UUID{owner.ID}, f.recomputedFor())
	})

	t.Run("passage expands to verses", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		detail, err := svc.Create(ctx, owner.ID, service.VerseSetInput{
			Name:    "John 3",
			SetType: domain.SetTypePassage,
			Passage: "John 3:16-18",
		})
		require.NoError(t, err)

		assert.Equal(t, "John 3:16-18", detail.Set.PassageRef)
		require.Len(t, detail.Choices, 3)
		assert.Equal(t, "John 3:18", detail.Choices[2].InternalReference)
	})

	t.Run("private set emits nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		_, err := svc.Create(ctx, owner.ID, selection("Mine", false, "John 3:16"))
		require.NoError(t, err)

		assert.Empty(t, f.eventsOfType(domain.EventVerseSetCreated))
		assert.Empty(t, f.emitter.Events())
	})

	t.Run("slugs are unique", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		var slugs []string
		for i := 0; i < 3; i++ {
			d, err := svc.Create(ctx, owner.ID, selection("Favourites", false, "John 3:16"))
			require.NoError(t, err)
			slugs = append(slugs, d.Set.Slug)
		}
		assert.Equal(t, []string{"favourites", "favourites-2", "favourites-3"}, slugs)
	})

	t.Run("reference missing from default version", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		_, err := svc.Create(ctx, owner.ID, selection("Broken", true, "Romans 8:28"))
		assert.ErrorIs(t, err, service.ErrNoVerses)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.addAccount(t, "alice")
		svc := service.NewVerseSetService(f.deps())

		_, err := svc.Create(ctx, owner.ID, selection("", true, "John 3:16"))
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Create(ctx, owner.ID, selection("Empty", true))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestVerseSetService_UpdateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addAccount(t, "alice")
	other := f.addAccount(t, "bob")
	svc := service.NewVerseSetService(f.deps())

	created, err := svc.Create(ctx, owner.ID, selection("Draft", false, "John 3:16"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, other.ID, created.Set.Slug)
	assert.ErrorIs(t, err, store.ErrVerseSetNotFound)

	_, err = svc.Update(ctx, other.ID, created.Set.Slug, selection("Stolen", true, "John 3:17"))
	assert.ErrorIs(t, err, service.ErrNotOwned)

	updated, err := svc.Update(ctx, owner.ID, created.Set.Slug, selection("Final", true, "John 3:17", "John 3:18"))
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Set.Name)
	assert.Equal(t, created.Set.Slug, updated.Set.Slug)

	got, err := svc.Get(ctx, other.ID, created.Set.Slug)
	require.NoError(t, err)
	require.Len(t, got.Choices, 2)
	assert.Equal(t, "John 3:17", got.Choices[0].InternalReference)
	assert.Equal(t, []uuid.UUID{owner.ID}, f.recomputedFor(), "becoming public triggers the sharer award")
}

func TestVerseSetService_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.addAccount(t, "alice")
	bob := f.addAccount(t, "bob")
	svc := service.NewVerseSetService(f.deps())

	_, err := svc.Create(ctx, alice.ID, selection("Comfort", true, "Psalm 23:1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice.ID, selection("Comfort private", false, "Psalm 23:2"))
	require.NoError(t, err)

	sets, err := svc.Search(ctx, bob.ID, "comfort", "", 1)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Comfort", sets[0].Name)

	sets, err = svc.Search(ctx, alice.ID, "comfort", store.VerseSetOrderNewest, 1)
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	_, err = svc.Search(ctx, alice.ID, "", "alphabetical", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVerseSetService_StartLearning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addAccount(t, "alice")
	learner := f.addAccount(t, "bob")
	sets := service.NewVerseSetService(f.deps())

	detail, err := sets.Create(ctx, creator.ID, service.VerseSetInput{
		Name:    "John 3",
		SetType: domain.SetTypePassage,
		Passage: "John 3:16-18",
		Public:  true,
	})
	require.NoError(t, err)

	created, err := sets.StartLearning(ctx, learner.ID, detail.Set.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	again, err := sets.StartLearning(ctx, learner.ID, detail.Set.Slug, "")
	require.NoError(t, err)
	assert.Zero(t, again, "verses already being learnt are skipped")

	got, err := sets.Get(ctx, learner.ID, detail.Set.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Set.Popularity)

	queue, err := service.NewLearningService(f.deps()).Queue(ctx, learner.ID, service.QueueNew)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	for i, st := range queue {
		assert.Equal(t, i, st.TextOrder)
		assert.True(t, st.VerseSetID.Valid)
	}

	started := f.eventsOfType(domain.EventStartedLearningVerseSet)
	require.Len(t, started, 1)
	assert.Equal(t, learner.ID, started[0].AccountID)
	assert.Contains(t, f.recomputedFor(), creator.ID)
	assert.Contains(t, f.recomputedFor(), learner.ID)
}

func TestVerseSetService_StartLearningOwnSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addAccount(t, "alice")
	sets := service.NewVerseSetService(f.deps())

	detail, err := sets.Create(ctx, creator.ID, selection("Mine", false, "Psalm 23:1"))
	require.NoError(t, err)

	created, err := sets.StartLearning(ctx, creator.ID, detail.Set.Slug, "WEB")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	got, err := sets.Get(ctx, creator.ID, detail.Set.Slug)
	require.NoError(t, err)
	assert.Zero(t, got.Set.Popularity)

	other := f.addAccount(t, "bob")
	_, err = sets.StartLearning(ctx, other.ID, detail.Set.Slug, "")
	assert.ErrorIs(t, err, store.ErrVerseSetNotFound)
}

func TestVerseSetService_StartLearningAfterCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	creator := f.addAccount(t, "alice")
	learner := f.addAccount(t, "bob")
	sets := service.NewVerseSetService(f.deps())
	learning := service.NewLearningService(f.deps())

	detail, err := sets.Create(ctx, creator.ID, selection("Favourites", true, "John 3:16", "Psalm 23:1"))
	require.NoError(t, err)
	_, err = sets.StartLearning(ctx, learner.ID, detail.Set.Slug, "")
	require.NoError(t, err)

	queue, err := learning.Queue(ctx, learner.ID, service.QueueNew)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.NoError(t, learning.CancelLearning(ctx, learner.ID, queue[0].ID))

	restarted, err := sets.StartLearning(ctx, learner.ID, detail.Set.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, 1, restarted, "only the cancelled verse is started again")

	queue, err = learning.Queue(ctx, learner.ID, service.QueueNew)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}
