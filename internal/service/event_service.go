package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// Feed sizes.
const (
	DashboardSize         = 20
	AccountEventsPageSize = 20
)

// EventService serves the activity feed.
type EventService interface {
	// Dashboard returns the most relevant recent events for viewerID.
	Dashboard(ctx context.Context, viewerID uuid.UUID) ([]*domain.Event, error)

	// AccountEvents lists the events of one account, newest first.
	AccountEvents(ctx context.Context, viewerID uuid.UUID, username string, page int) ([]*domain.Event, error)
}

type eventService struct {
	deps Deps
}

// NewEventService creates an EventService.
func NewEventService(deps Deps) EventService {
	return &eventService{deps: deps.withComponent("event_service")}
}

func (s *eventService) Dashboard(ctx context.Context, viewerID uuid.UUID) ([]*domain.Event, error) {
	now := s.deps.now()
	st := s.deps.UoW.Stores()

	candidates, err := st.Events.ListSince(ctx, now.Add(-domain.DashboardWindow), domain.DashboardCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	ids, err := st.Groups.RelatedAccountIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load related accounts: %w", err)
	}
	related := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		related[id] = true
	}
	return domain.RankDashboard(viewerID, candidates, related, now, DashboardSize), nil
}

func (s *eventService) AccountEvents(ctx context.Context, viewerID uuid.UUID, username string, page int) ([]*domain.Event, error) {
	st := s.deps.UoW.Stores()
	account, err := st.Accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.IsHellbanned && account.ID != viewerID {
		return []*domain.Event{}, nil
	}
	evts, err := st.Events.ListByAccount(ctx, account.ID, AccountEventsPageSize, pageOffset(page, AccountEventsPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return evts, nil
}
