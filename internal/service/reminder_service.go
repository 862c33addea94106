package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/events"
)

// ReminderService emails learners who have fallen behind on their reviews.
type ReminderService interface {
	// SendReminders queues a reminder for every account due one at now and
	// returns how many were queued.
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

type reminderService struct {
	deps    Deps
	baseURL string
}

// NewReminderService creates a ReminderService linking to baseURL.
func NewReminderService(deps Deps, baseURL string) ReminderService {
	return &reminderService{
		deps:    deps.withComponent("reminder_service"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *reminderService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	st := s.deps.UoW.Stores()
	log := s.deps.log(ctx)
	now = now.UTC()

	candidates, err := st.Accounts.ListReminderCandidates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list reminder candidates: %w", err)
	}

	sent := 0
	for _, c := range candidates {
		if !c.ShouldRemind(now) {
			continue
		}
		ev, err := events.NewSendEmail(email.Message{
			To:           c.Email,
			TemplateName: email.TemplateReminder,
			TemplateData: map[string]any{
				"Name":        c.DisplayName(),
				"DueCount":    c.DueCount,
				"FirstDue":    humanize.RelTime(c.FirstDue, now, "ago", "from now"),
				"URL":         s.baseURL + "/dashboard/",
				"SettingsURL": s.baseURL + "/account/",
			},
		})
		if err != nil {
			log.Error("failed to build reminder", "account_id", c.ID, "error", err)
			continue
		}
		if err := s.deps.Emitter.EmitEvent(ctx, ev); err != nil {
			log.Error("failed to queue reminder", "account_id", c.ID, "error", err)
			continue
		}
		if err := st.Accounts.SetLastReminderSent(ctx, c.ID, now); err != nil {
			return sent, fmt.Errorf("failed to record reminder: %w", err)
		}
		sent++
	}
	log.Info("reminders sent", "candidates", len(candidates), "sent", sent)
	return sent, nil
}
