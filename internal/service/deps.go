package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	UoW     store.UnitOfWork
	Emitter events.EventEmitter
	Logger  *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// log returns the request logger when one is attached, else the service logger.
func (d Deps) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, d.Logger)
}

func (d Deps) emit(ctx context.Context, evts ...*events.TaskRequestEvent) {
	events.EmitAll(ctx, d.Emitter, d.log(ctx), evts...)
}

// recomputeAwards builds recompute_awards requests, skipping nil accounts and
// logging build failures.
func (d Deps) recomputeAwards(ctx context.Context, accountIDs ...uuid.UUID) []*events.TaskRequestEvent {
	var out []*events.TaskRequestEvent
	for _, id := range accountIDs {
		if id == uuid.Nil {
			continue
		}
		ev, err := events.NewRecomputeAwards(id)
		if err != nil {
			d.log(ctx).Error("failed to build award request", "account_id", id, "error", err)
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (d Deps) withComponent(name string) Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	d.Logger = d.Logger.With("component", name)
	return d
}

// pageOffset converts a 1-based page number into an offset.
func pageOffset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
