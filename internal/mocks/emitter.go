package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phrazzld/learnscripture-api/internal/events"
)

// EventEmitter records emitted task requests.
type EventEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent

	// Err is returned by EmitEvent when set. The event is still recorded.
	Err error
}

var _ events.EventEmitter = (*EventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (e *EventEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.Err
}

// Events returns the recorded events in emission order.
func (e *EventEmitter) Events() []*events.TaskRequestEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.TaskRequestEvent(nil), e.events...)
}

// OfType returns the recorded events of one task type.
func (e *EventEmitter) OfType(taskType string) []*events.TaskRequestEvent {
	var out []*events.TaskRequestEvent
	for _, ev := range e.Events() {
		if ev.Type == taskType {
			out = append(out, ev)
		}
	}
	return out
}

// Emails decodes the messages of every recorded send_email request.
func (e *EventEmitter) Emails() []events.SendEmailPayload {
	var out []events.SendEmailPayload
	for _, ev := range e.OfType(events.TaskSendEmail) {
		var p events.SendEmailPayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// AwardRecomputations decodes the account of every recorded recompute_awards request.
func (e *EventEmitter) AwardRecomputations() []events.RecomputeAwardsPayload {
	var out []events.RecomputeAwardsPayload
	for _, ev := range e.OfType(events.TaskRecomputeAwards) {
		var p events.RecomputeAwardsPayload
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
