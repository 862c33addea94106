package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/email"
	"github.com/phrazzld/learnscripture-api/internal/events"
)

// MessageRenderer fills an email's content from its template.
type MessageRenderer interface {
	Render(msg *email.Message) error
}

// AwardRecomputer grants any awards an account has newly earned.
type AwardRecomputer interface {
	RecomputeAwards(ctx context.Context, accountID uuid.UUID) ([]*domain.Award, error)
}

// ReminderSender sends due review reminders.
type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// SendEmailTask renders and delivers one email.
type SendEmailTask struct {
	baseTask
	msg      email.Message
	renderer MessageRenderer
	mailer   email.Mailer
}

// NewSendEmailFactory returns the factory for send_email tasks.
func NewSendEmailFactory(renderer MessageRenderer, mailer email.Mailer) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		var p events.SendEmailPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid send_email payload: %w", err)
		}
		if err := p.Message.Validate(); err != nil {
			return nil, err
		}
		return &SendEmailTask{
			baseTask: newBaseTask(id, events.TaskSendEmail, payload),
			msg:      p.Message,
			renderer: renderer,
			mailer:   mailer,
		}, nil
	}
}

// Execute renders the message and sends it.
func (t *SendEmailTask) Execute(ctx context.Context) error {
	msg := t.msg
	if err := t.renderer.Render(&msg); err != nil {
		return err
	}
	if err := t.mailer.Send(ctx, &msg); err != nil {
		return fmt.Errorf("failed to send %q email: %w", msg.TemplateName, err)
	}
	return nil
}

// RecomputeAwardsTask grants missing awards for one account.
type RecomputeAwardsTask struct {
	baseTask
	accountID uuid.UUID
	awards    AwardRecomputer
	logger    *slog.Logger
}

// NewRecomputeAwardsFactory returns the factory for recompute_awards tasks.
func NewRecomputeAwardsFactory(awards AwardRecomputer, logger *slog.Logger) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		var p events.RecomputeAwardsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("invalid recompute_awards payload: %w", err)
		}
		if p.AccountID == uuid.Nil {
			return nil, fmt.Errorf("recompute_awards payload has no account")
		}
		return &RecomputeAwardsTask{
			baseTask:  newBaseTask(id, events.TaskRecomputeAwards, payload),
			accountID: p.AccountID,
			awards:    awards,
			logger:    logger,
		}, nil
	}
}

// Execute recomputes the account's awards.
func (t *RecomputeAwardsTask) Execute(ctx context.Context) error {
	granted, err := t.awards.RecomputeAwards(ctx, t.accountID)
	if err != nil {
		return err
	}
	if len(granted) > 0 {
		t.logger.Info("awards granted", "account_id", t.accountID, "count", len(granted))
	}
	return nil
}

// SendRemindersTask runs one pass of the reminder emails.
type SendRemindersTask struct {
	baseTask
	reminders ReminderSender
	logger    *slog.Logger
	now       func() time.Time
}

// NewSendRemindersFactory returns the factory for send_reminders tasks.
func NewSendRemindersFactory(reminders ReminderSender, logger *slog.Logger) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		if len(payload) > 0 {
			var p events.SendRemindersPayload
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, fmt.Errorf("invalid send_reminders payload: %w", err)
			}
		}
		return &SendRemindersTask{
			baseTask:  newBaseTask(id, events.TaskSendReminders, payload),
			reminders: reminders,
			logger:    logger,
			now:       time.Now,
		}, nil
	}
}

// Execute sends reminders due at the time the task runs, not when it was
// scheduled, so a recovered run does not use a stale clock.
func (t *SendRemindersTask) Execute(ctx context.Context) error {
	sent, err := t.reminders.SendReminders(ctx, t.now().UTC())
	if err != nil {
		return err
	}
	t.logger.Info("reminder run finished", "sent", sent)
	return nil
}
