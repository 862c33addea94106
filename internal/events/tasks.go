package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/email"
)

// Task types understood by the task runner.
const (
	TaskSendEmail       = "send_email"
	TaskRecomputeAwards = "recompute_awards"
	TaskSendReminders   = "send_reminders"
)

// SendEmailPayload is the payload of a send_email task.
type SendEmailPayload struct {
	Message email.Message `json:"message"`
}

// RecomputeAwardsPayload is the payload of a recompute_awards task.
type RecomputeAwardsPayload struct {
	AccountID uuid.UUID `json:"account_id"`
}

// SendRemindersPayload is the payload of a send_reminders task.
type SendRemindersPayload struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewSendEmail requests delivery of msg.
func NewSendEmail(msg email.Message) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TaskSendEmail, SendEmailPayload{Message: msg})
}

// NewRecomputeAwards requests an award recomputation for an account.
func NewRecomputeAwards(accountID uuid.UUID) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TaskRecomputeAwards, RecomputeAwardsPayload{AccountID: accountID})
}

// NewSendReminders requests a reminder run.
func NewSendReminders(at time.Time) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TaskSendReminders, SendRemindersPayload{ScheduledAt: at.UTC()})
}
