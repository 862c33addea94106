package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// InMemoryEventEmitter hands task requests to its handlers on the caller's
// goroutine. In the server the only handler is the task request handler,
// which persists the task and queues it for a worker.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{logger: logger.With("component", "event_emitter")}
}

// RegisterHandler adds a handler that will receive every event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", "handler_count", len(e.handlers))
}

// EmitEvent sends the event to every handler, even when one fails, and
// returns the first error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("dropping task request with no handlers", "event_id", event.ID, "event_type", event.Type)
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// EmitAll emits each event in order, logging failures instead of returning
// them. Services call it after their transaction commits, when the work is
// already durable and a lost follow-up task must not fail the request.
func EmitAll(ctx context.Context, emitter EventEmitter, logger *slog.Logger, evts ...*TaskRequestEvent) {
	for _, ev := range evts {
		if ev == nil {
			continue
		}
		if err := emitter.EmitEvent(ctx, ev); err != nil {
			logger.Error("failed to emit task request",
				"event_id", ev.ID,
				"event_type", ev.Type,
				"error", err)
		}
	}
}
