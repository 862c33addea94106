package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// BibleHandler serves Bible versions and verse text.
type BibleHandler struct {
	bible service.BibleService
}

// NewBibleHandler creates a BibleHandler.
func NewBibleHandler(bible service.BibleService) *BibleHandler {
	return &BibleHandler{bible: bible}
}

// ListVersions handles GET /api/versions.
func (h *BibleHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.bible.ListVersions(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list versions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, versions)
}

// GetVerses handles GET /api/versions/{slug}/verses?ref=.
func (h *BibleHandler) GetVerses(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		HandleAPIError(w, r, domain.NewValidationError("ref", "is required", nil), "")
		return
	}
	passage, err := h.bible.GetVerses(r.Context(), chi.URLParam(r, "slug"), ref)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load verses")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, passage)
}
