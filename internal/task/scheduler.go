package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/learnscripture-api/internal/events"
)

// Scheduler requests a send_reminders task at a fixed interval.
type Scheduler struct {
	emitter  events.EventEmitter
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler. It does nothing until Start.
func NewScheduler(emitter events.EventEmitter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		emitter:  emitter,
		interval: interval,
		logger:   logger.With("component", "reminder_scheduler"),
	}
}

// Start begins ticking in the background.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Tick(ctx, now)
			}
		}
	}()

	s.logger.Info("reminder scheduler started", "interval", s.interval)
}

// Tick requests one reminder run.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	ev, err := events.NewSendReminders(now)
	if err != nil {
		s.logger.Error("failed to build reminder request", "error", err)
		return
	}
	if err := s.emitter.EmitEvent(ctx, ev); err != nil {
		s.logger.Error("failed to request reminder run", "error", err)
	}
}

// Stop halts the scheduler and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
