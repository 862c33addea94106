package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// LeaderboardPageSize is the number of entries per leaderboard page.
const LeaderboardPageSize = 30

// LeaderboardRequest selects a leaderboard page.
type LeaderboardRequest struct {
	Period domain.LeaderboardPeriod
	// AccountIDs restricts the board, e.g. to the members of a group.
	AccountIDs []uuid.UUID
	Page       int
}

// ScoreService provides leaderboards.
type ScoreService interface {
	Leaderboard(ctx context.Context, req LeaderboardRequest) ([]*domain.LeaderboardEntry, error)
}

type scoreService struct {
	deps Deps
}

// NewScoreService creates a ScoreService.
func NewScoreService(deps Deps) ScoreService {
	return &scoreService{deps: deps.withComponent("score_service")}
}

// Leaderboard ranks accounts by all-time total or by points earned in the
// last week.
func (s *scoreService) Leaderboard(ctx context.Context, req LeaderboardRequest) ([]*domain.LeaderboardEntry, error) {
	if req.Period == "" {
		req.Period = domain.LeaderboardAllTime
	}
	if !req.Period.Valid() {
		return nil, domain.NewValidationError("period", "must be all or week", nil)
	}

	q := store.LeaderboardQuery{
		AccountIDs: req.AccountIDs,
		Limit:      LeaderboardPageSize,
		Offset:     pageOffset(req.Page, LeaderboardPageSize),
	}
	if req.Period == domain.LeaderboardWeek {
		q.Since = s.deps.now().Add(-7 * 24 * time.Hour)
	}

	entries, err := s.deps.UoW.Stores().Scores.Leaderboard(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// applyPoints stores score logs, adds them to the account total and records a
// points milestone event when one was crossed. It runs inside the caller's
// transaction and updates account.TotalScore.
func applyPoints(ctx context.Context, s store.Stores, account *domain.Account, logs []*domain.ScoreLog, now time.Time) (int, error) {
	total := domain.TotalPoints(logs)
	if total == 0 {
		return 0, nil
	}
	for _, l := range logs {
		if err := s.Scores.AddLog(ctx, l); err != nil {
			return 0, fmt.Errorf("failed to save score log: %w", err)
		}
	}

	before, after, err := s.Accounts.AddScore(ctx, account.ID, total)
	if err != nil {
		return 0, fmt.Errorf("failed to add score: %w", err)
	}
	account.TotalScore = after

	if m := domain.CrossedMilestone(domain.PointsMilestoneBase, before, after); m > 0 {
		if err := s.Events.Create(ctx, domain.NewPointsMilestoneEvent(account, m, now)); err != nil {
			return 0, fmt.Errorf("failed to record points milestone: %w", err)
		}
	}
	return total, nil
}
