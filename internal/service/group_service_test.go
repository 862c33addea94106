package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupService(f *fixture) service.GroupService {
	return service.NewGroupService(f.deps(), service.NewScoreService(f.deps()), "https://example.com/")
}

func TestGroupService_CreateAndJoinOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addAccount(t, "alice")
	joiner := f.addAccount(t, "bob")
	svc := newGroupService(f)

	g, err := svc.Create(ctx, owner.ID, service.GroupInput{Name: "Bible Club", Public: true, Open: true})
	require.NoError(t, err)
	assert.Equal(t, "bible-club", g.Slug)
	require.Len(t, f.eventsOfType(domain.EventGroupCreated), 1)

	require.NoError(t, svc.Join(ctx, joiner.ID, g.Slug))
	require.NoError(t, svc.Join(ctx, joiner.ID, g.Slug), "joining twice is a no-op")

	members, err := svc.Members(ctx, joiner.ID, g.Slug)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Username)

	assert.Len(t, f.eventsOfType(domain.EventGroupJoined), 1)
	assert.Equal(t, []uuid.UUID{owner.ID}, f.recomputedFor(), "organizer award for the creator")

	require.NoError(t, svc.Leave(ctx, joiner.ID, g.Slug))
	assert.ErrorIs(t, svc.Leave(ctx, owner.ID, g.Slug), service.ErrCreatorCannotLeave)
	assert.ErrorIs(t, svc.Leave(ctx, joiner.ID, g.Slug), store.ErrMembershipMissing)
}

func TestGroupService_PrivateGroupInvitation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addAccount(t, "alice")
	guest := f.addAccount(t, "bob")
	outsider := f.addAccount(t, "carol")
	svc := newGroupService(f)

	g, err := svc.Create(ctx, owner.ID, service.GroupInput{Name: "Family"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, guest.ID, g.Slug)
	assert.ErrorIs(t, err, store.ErrGroupNotFound)
	assert.ErrorIs(t, svc.Join(ctx, guest.ID, g.Slug), store.ErrGroupNotFound)

	require.NoError(t, svc.Invite(ctx, owner.ID, g.Slug, "bob"))

	emails := f.emitter.Emails()
	require.Len(t, emails, 1)
	msg := emails[0].Message
	assert.Equal(t, guest.Email, msg.To)
	assert.Equal(t, email.TemplateGroupInvitation, msg.TemplateName)
	assert.Equal(t, "Family", msg.TemplateData["GroupName"])
	assert.Equal(t, "https://example.com/groups/family/", msg.TemplateData["URL"])

	got, err := svc.Get(ctx, guest.ID, g.Slug)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	require.NoError(t, svc.Join(ctx, guest.ID, g.Slug))

	err = svc.Invite(ctx, guest.ID, g.Slug, "carol")
	assert.ErrorIs(t, err, service.ErrForbidden, "members of closed groups cannot invite")

	err = svc.Invite(ctx, outsider.ID, g.Slug, "carol")
	assert.ErrorIs(t, err, store.ErrGroupNotFound)
}

func TestGroupService_ClosedPublicGroupNeedsInvitation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addAccount(t, "alice")
	other := f.addAccount(t, "bob")
	svc := newGroupService(f)

	g, err := svc.Create(ctx, owner.ID, service.GroupInput{Name: "Readers", Public: true})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Join(ctx, other.ID, g.Slug), service.ErrNotInvited)
}

func TestGroupService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	owner := f.addAccount(t, "alice")
	other := f.addAccount(t, "bob")
	mod := f.addAccount(t, "moderator")
	mod.IsModerator = true
	require.NoError(t, f.db.Stores().Accounts.Update(ctx, mod))
	svc := newGroupService(f)

	g, err := svc.Create(ctx, owner.ID, service.GroupInput{Name: "Club"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, g.Slug, service.GroupInput{Name: "Mine"})
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := svc.Update(ctx, mod.ID, g.Slug, service.GroupInput{Name: "Renamed", Public: true})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "club", updated.Slug)

	_, err = svc.Update(ctx, owner.ID, g.Slug, service.GroupInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := svc.List(ctx, other.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestGroupService_Leaderboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	st := f.db.Stores()
	owner := f.addAccount(t, "alice")
	member := f.addAccount(t, "bob")
	outsider := f.addAccount(t, "carol")
	svc := newGroupService(f)

	for _, a := range []*domain.Account{owner, member, outsider} {
		_, _, err := st.Accounts.AddScore(ctx, a.ID, 100)
		require.NoError(t, err)
	}

	g, err := svc.Create(ctx, owner.ID, service.GroupInput{Name: "Club", Public: true, Open: true})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, member.ID, g.Slug))

	board, err := svc.Leaderboard(ctx, outsider.ID, g.Slug, domain.LeaderboardAllTime, 1)
	require.NoError(t, err)
	require.Len(t, board, 2)
	for _, e := range board {
		assert.NotEqual(t, outsider.ID, e.AccountID)
	}
}
