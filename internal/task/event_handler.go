package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/learnscripture-api/internal/events"
)

// Submitter accepts tasks for execution. *TaskRunner implements it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskRequestHandler implements events.EventHandler by building tasks from
// requests through the registry and submitting them to the runner.
type TaskRequestHandler struct {
	registry  *Registry
	submitter Submitter
	logger    *slog.Logger
}

// NewTaskRequestHandler creates a handler for task request events.
func NewTaskRequestHandler(registry *Registry, submitter Submitter, logger *slog.Logger) *TaskRequestHandler {
	return &TaskRequestHandler{
		registry:  registry,
		submitter: submitter,
		logger:    logger.With("component", "task_request_handler"),
	}
}

// HandleEvent builds the requested task, reusing the event ID as the task
// ID, and submits it.
func (h *TaskRequestHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	t, err := h.registry.Build(event.Type, event.ID, event.Payload)
	if err != nil {
		h.logger.Error("failed to create task", "error", err, "event_id", event.ID, "event_type", event.Type)
		return err
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"task_type", t.Type())
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("task submitted", "task_id", t.ID(), "task_type", t.Type())
	return nil
}

var _ events.EventHandler = (*TaskRequestHandler)(nil)
