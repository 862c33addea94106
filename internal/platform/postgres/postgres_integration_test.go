//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/mocks"
	"github.com/phrazzld/learnscripture-api/internal/platform/postgres"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/phrazzld/learnscripture-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAccount(t *testing.T, stores store.Stores, username string) *domain.Account {
	t.Helper()
	a, err := domain.NewAccount(username, username+"@example.com", "", "", time.Now())
	require.NoError(t, err)
	a.HashedPassword = "hash"
	require.NoError(t, stores.Accounts.Create(context.Background(), a))
	return a
}

func TestAccountStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx)

		a := createAccount(t, stores, "Reader_One")

		got, err := stores.Accounts.GetByUsername(ctx, "reader_one")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		dup, err := domain.NewAccount("READER_ONE", "other@example.com", "", "", time.Now())
		require.NoError(t, err)
		dup.HashedPassword = "hash"
		assert.ErrorIs(t, stores.Accounts.Create(ctx, dup), store.ErrUsernameExists)

		before, after, err := stores.Accounts.AddScore(ctx, a.ID, 25)
		require.NoError(t, err)
		assert.Equal(t, 0, before)
		assert.Equal(t, 25, after)

		n, err := stores.Accounts.MarkBounced(ctx, a.Email, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = stores.Accounts.MarkBounced(ctx, a.Email, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})
}

func TestVersionStore_SeededVersions(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		stores := postgres.NewStores(tx)

		versions, err := stores.Verses.ListVersions(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, versions)

		kjv, err := stores.Verses.GetVersionBySlug(context.Background(), "KJV")
		require.NoError(t, err)
		assert.Equal(t, "King James Version", kjv.FullName)
	})
}

func TestGroupStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx)

		owner := createAccount(t, stores, "group_owner")
		member := createAccount(t, stores, "group_member")

		g, err := domain.NewGroup("Home group", "", true, true, owner.ID, time.Now())
		require.NoError(t, err)
		g.Slug = "home-group"
		require.NoError(t, stores.Groups.Create(ctx, g))

		added, err := stores.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, AccountID: owner.ID, Created: time.Now()})
		require.NoError(t, err)
		assert.True(t, added)
		added, err = stores.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, AccountID: member.ID, Created: time.Now()})
		require.NoError(t, err)
		assert.True(t, added)
		added, err = stores.Groups.AddMember(ctx, &domain.Membership{GroupID: g.ID, AccountID: member.ID, Created: time.Now()})
		require.NoError(t, err)
		assert.False(t, added)

		related, err := stores.Groups.RelatedAccountIDs(ctx, owner.ID)
		require.NoError(t, err)
		assert.Contains(t, related, member.ID)

		require.NoError(t, stores.Groups.RemoveMember(ctx, g.ID, member.ID))
		assert.ErrorIs(t, stores.Groups.RemoveMember(ctx, g.ID, member.ID), store.ErrMembershipMissing)
	})
}

func TestLearningStore_ReactivatesCancelled_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDB(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx)
		a := createAccount(t, stores, "re_learner")
		kjv, err := stores.Verses.GetVersionBySlug(ctx, "KJV")
		require.NoError(t, err)

		first := &domain.UserVerseStatus{
			ID: uuid.New(), AccountID: a.ID, VersionID: kjv.ID,
			LocalizedReference: "Psalm 23:1", InternalReference: "Psalm 23:1", Added: time.Now(),
		}
		created, err := stores.Learning.Create(ctx, first)
		require.NoError(t, err)
		require.True(t, created)

		again := *first
		again.ID = uuid.New()
		created, err = stores.Learning.Create(ctx, &again)
		require.NoError(t, err)
		assert.False(t, created, "a verse being learnt is not added twice")

		first.Ignored = true
		first.MemoryStage = domain.MemoryStageTested
		first.Strength = 0.5
		require.NoError(t, stores.Learning.Update(ctx, first))

		again.ID = uuid.New()
		created, err = stores.Learning.Create(ctx, &again)
		require.NoError(t, err)
		require.True(t, created)
		assert.Equal(t, first.ID, again.ID)

		got, err := stores.Learning.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.False(t, got.Ignored)
		assert.Equal(t, domain.MemoryStageZero, got.MemoryStage)
		assert.Zero(t, got.Strength)
	})
}

// RecordTest updates the status and writes test history before it reads the
// verse text. A failing lookup must leave none of those writes behind.
func TestLearningService_RecordTestIsAtomic_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDB(t)
	ctx := context.Background()
	stores := postgres.NewStores(db)

	a := createAccount(t, stores, "atomic_"+uuid.NewString()[:8])
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM accounts WHERE id = $1`, a.ID)
	})
	kjv, err := stores.Verses.GetVersionBySlug(ctx, "KJV")
	require.NoError(t, err)

	status := &domain.UserVerseStatus{
		ID: uuid.New(), AccountID: a.ID, VersionID: kjv.ID,
		LocalizedReference: "Nowhere 1:1", InternalReference: "Nowhere 1:1", Added: time.Now(),
	}
	created, err := stores.Learning.Create(ctx, status)
	require.NoError(t, err)
	require.True(t, created)

	svc := service.NewLearningService(service.Deps{
		UoW:     postgres.NewUnitOfWork(db),
		Emitter: &mocks.EventEmitter{},
	})
	_, err = svc.RecordTest(ctx, a.ID, status.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidReference)

	got, err := stores.Learning.GetByID(ctx, status.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MemoryStageZero, got.MemoryStage)
	assert.False(t, got.LastTested.Valid)

	var tests int
	require.NoError(t, db.GetContext(ctx, &tests, `SELECT count(*) FROM verse_tests WHERE account_id = $1`, a.ID))
	assert.Zero(t, tests)
}
