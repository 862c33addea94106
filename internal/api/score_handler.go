package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// ScoreHandler serves leaderboards and awards.
type ScoreHandler struct {
	scores service.ScoreService
	groups service.GroupService
	awards service.AwardService
}

// NewScoreHandler creates a ScoreHandler.
func NewScoreHandler(scores service.ScoreService, groups service.GroupService, awards service.AwardService) *ScoreHandler {
	return &ScoreHandler{scores: scores, groups: groups, awards: awards}
}

func periodParam(r *http.Request) (domain.LeaderboardPeriod, error) {
	period := domain.LeaderboardPeriod(r.URL.Query().Get("period"))
	if period == "" {
		return domain.LeaderboardAllTime, nil
	}
	if !period.Valid() {
		return "", domain.NewValidationError("period", "must be all or week", nil)
	}
	return period, nil
}

// Leaderboard handles GET /api/leaderboard?period=&group=&page=.
func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var entries []*domain.LeaderboardEntry
	if slug := r.URL.Query().Get("group"); slug != "" {
		entries, err = h.groups.Leaderboard(r.Context(), viewerID(r), slug, period, pageParam(r))
	} else {
		entries, err = h.scores.Leaderboard(r.Context(), service.LeaderboardRequest{Period: period, Page: pageParam(r)})
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// MyAwards handles GET /api/awards.
func (h *ScoreHandler) MyAwards(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	awards, err := h.awards.ListAwards(r.Context(), accountID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load awards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, awards)
}

// AccountAwards handles GET /api/accounts/{username}/awards.
func (h *ScoreHandler) AccountAwards(w http.ResponseWriter, r *http.Request) {
	awards, err := h.awards.ListAwardsByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load awards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, awards)
}
