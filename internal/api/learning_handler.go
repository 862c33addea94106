package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// LearningHandler serves the learning queue and verse tests.
type LearningHandler struct {
	learning service.LearningService
}

// NewLearningHandler creates a LearningHandler.
func NewLearningHandler(learning service.LearningService) *LearningHandler {
	return &LearningHandler{learning: learning}
}

// AddVerse handles POST /api/learning/verses.
func (h *LearningHandler) AddVerse(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req AddVerseRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	statuses, err := h.learning.AddVerse(r.Context(), accountID, req.Reference, req.Version)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add verse")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, statuses)
}

// Queue handles GET /api/learning/queue?kind=new|review.
func (h *LearningHandler) Queue(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	kind := service.QueueKind(r.URL.Query().Get("kind"))
	switch kind {
	case "":
		kind = service.QueueReview
	case service.QueueNew, service.QueueReview:
	default:
		HandleAPIError(w, r, domain.NewValidationError("kind", "must be new or review", nil), "")
		return
	}

	statuses, err := h.learning.Queue(r.Context(), accountID, kind)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load queue")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, statuses)
}

// MarkSeen handles POST /api/learning/verses/{id}/seen.
func (h *LearningHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	accountID, statusID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	status, err := h.learning.MarkSeen(r.Context(), accountID, statusID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update verse")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// RecordTest handles POST /api/learning/verses/{id}/test.
func (h *LearningHandler) RecordTest(w http.ResponseWriter, r *http.Request) {
	accountID, statusID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req TestRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	result, err := h.learning.RecordTest(r.Context(), accountID, statusID, *req.Accuracy)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record test")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// statusAction adapts a no-result learning operation to a 204 handler.
func (h *LearningHandler) statusAction(fn func(r *http.Request, accountID, statusID uuid.UUID) error, fallback string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, statusID, ok := accountAndPathUUID(w, r, "id")
		if !ok {
			return
		}
		if err := fn(r, accountID, statusID); err != nil {
			HandleAPIError(w, r, err, fallback)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReviewSoon handles POST /api/learning/verses/{id}/review-soon.
func (h *LearningHandler) ReviewSoon(w http.ResponseWriter, r *http.Request) {
	h.statusAction(func(r *http.Request, accountID, statusID uuid.UUID) error {
		return h.learning.RequestEarlyReview(r.Context(), accountID, statusID)
	}, "Failed to schedule review")(w, r)
}

// Reset handles POST /api/learning/verses/{id}/reset.
func (h *LearningHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.statusAction(func(r *http.Request, accountID, statusID uuid.UUID) error {
		return h.learning.ResetProgress(r.Context(), accountID, statusID)
	}, "Failed to reset progress")(w, r)
}

// Cancel handles DELETE /api/learning/verses/{id}.
func (h *LearningHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.statusAction(func(r *http.Request, accountID, statusID uuid.UUID) error {
		return h.learning.CancelLearning(r.Context(), accountID, statusID)
	}, "Failed to stop learning verse")(w, r)
}

// Progress handles GET /api/learning/progress.
func (h *LearningHandler) Progress(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	progress, err := h.learning.Progress(r.Context(), accountID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, progress)
}
