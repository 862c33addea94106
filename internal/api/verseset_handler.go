package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// VerseSetHandler serves verse set CRUD, search and "learn this set".
type VerseSetHandler struct {
	sets service.VerseSetService
}

// NewVerseSetHandler creates a VerseSetHandler.
func NewVerseSetHandler(sets service.VerseSetService) *VerseSetHandler {
	return &VerseSetHandler{sets: sets}
}

func (req VerseSetRequest) input() service.VerseSetInput {
	return service.VerseSetInput{
		Name:        req.Name,
		Description: req.Description,
		SetType:     req.SetType,
		Public:      req.Public,
		References:  req.References,
		Passage:     req.Passage,
	}
}

// Create handles POST /api/versesets.
func (h *VerseSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req VerseSetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	detail, err := h.sets.Create(r.Context(), accountID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create verse set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, detail)
}

// Search handles GET /api/versesets?q=&order=&page=.
func (h *VerseSetHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order := store.VerseSetOrder(q.Get("order"))
	switch order {
	case "":
		order = store.VerseSetOrderPopularity
	case store.VerseSetOrderPopularity, store.VerseSetOrderNewest:
	default:
		HandleAPIError(w, r, domain.NewValidationError("order", "must be popularity or newest", nil), "")
		return
	}

	sets, err := h.sets.Search(r.Context(), viewerID(r), q.Get("q"), order, pageParam(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search verse sets")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sets)
}

// Get handles GET /api/versesets/{slug}.
func (h *VerseSetHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.sets.Get(r.Context(), viewerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load verse set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Update handles PUT /api/versesets/{slug}.
func (h *VerseSetHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req VerseSetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	detail, err := h.sets.Update(r.Context(), accountID, chi.URLParam(r, "slug"), req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update verse set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// Learn handles POST /api/versesets/{slug}/learn. The body is optional.
func (h *VerseSetHandler) Learn(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req LearnRequest
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, &req) {
			return
		}
	}
	added, err := h.sets.StartLearning(r.Context(), accountID, chi.URLParam(r, "slug"), req.Version)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start learning")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LearnResponse{Added: added})
}
