package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, ev *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *recordingEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func TestScheduler_Tick(t *testing.T) {
	t.Parallel()

	emitter := &recordingEmitter{}
	s := NewScheduler(emitter, time.Hour, testLogger(t))

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.Tick(context.Background(), now)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TaskSendReminders, emitter.events[0].Type)

	var p events.SendRemindersPayload
	require.NoError(t, emitter.events[0].UnmarshalPayload(&p))
	assert.True(t, now.Equal(p.ScheduledAt))
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	emitter := &recordingEmitter{}
	s := NewScheduler(emitter, 5*time.Millisecond, testLogger(t))
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return emitter.count() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	n := emitter.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, emitter.count())
}
