package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// LeaderboardQuery selects a page of a leaderboard.
type LeaderboardQuery struct {
	// Since restricts points to score logs created after it. Zero means
	// all-time totals.
	Since time.Time
	// AccountIDs restricts the board to these accounts when non-nil.
	AccountIDs []uuid.UUID
	Limit      int
	Offset     int
}

// ScoreStore defines persistence for score logs and leaderboards.
type ScoreStore interface {
	AddLog(ctx context.Context, log *domain.ScoreLog) error

	// Leaderboard ranks non-hellbanned, active accounts by points descending.
	Leaderboard(ctx context.Context, q LeaderboardQuery) ([]*domain.LeaderboardEntry, error)
}
