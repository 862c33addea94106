package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

const day = 24 * time.Hour

// addTestedVerse stores a tested status for John 3:16 that fell due at due.
func (f *fixture) addTestedVerse(t *testing.T, accountID uuid.UUID, due time.Time) {
	t.Helper()
	v := verse(f.kjv, 42, 3, 16, 26136, "For God so loved the world")
	s := domain.NewUserVerseStatus(accountID, f.kjv.ID, v, uuid.NullUUID{}, 0, f.now)
	s.MemoryStage = domain.MemoryStageTested
	s.Strength = 0.3
	s.LastTested = null.TimeFrom(due.Add(-day))
	s.NextTestDue = null.TimeFrom(due)
	_, err := f.db.Stores().Learning.Create(context.Background(), s)
	require.NoError(t, err)
}

func TestReminderService_SendReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := service.NewReminderService(f.deps(), "https://example.com/")

	overdue := f.addAccount(t, "overdue")
	f.addTestedVerse(t, overdue.ID, f.now.Add(-3*day))

	recent := f.addAccount(t, "recent")
	f.addTestedVerse(t, recent.ID, f.now.Add(-36*time.Hour))

	bounced := f.addAccount(t, "bounced")
	f.addTestedVerse(t, bounced.ID, f.now.Add(-5*day))
	_, err := f.db.Stores().Accounts.MarkBounced(ctx, bounced.Email, f.now)
	require.NoError(t, err)

	f.addAccount(t, "idle")

	sent, err := svc.SendReminders(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	emails := f.emitter.Emails()
	require.Len(t, emails, 1)
	msg := emails[0].Message
	assert.Equal(t, overdue.Email, msg.To)
	assert.Equal(t, email.TemplateReminder, msg.TemplateName)
	assert.InDelta(t, 1, msg.TemplateData["DueCount"], 0, "template data round-trips through JSON")
	assert.Equal(t, "3 days ago", msg.TemplateData["FirstDue"])
	assert.Equal(t, "https://example.com/dashboard/", msg.TemplateData["URL"])
	assert.True(t, f.account(t, overdue.ID).LastReminderSent.Valid)

	sent, err = svc.SendReminders(ctx, f.now.Add(day))
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "only the recent learner is now due")
	assert.Equal(t, recent.Email, f.emitter.Emails()[1].Message.To)

	sent, err = svc.SendReminders(ctx, f.now.Add(3*day))
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "overdue learner is reminded again after RemindEvery days")
}
