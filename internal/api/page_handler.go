package api

import (
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// PageHandler serves CMS pages and their moderator-only administration.
type PageHandler struct {
	cms service.CMSService
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(cms service.CMSService) *PageHandler {
	return &PageHandler{cms: cms}
}

// Navigation handles GET /api/pages/navigation.
func (h *PageHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	nav, err := h.cms.Navigation(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load navigation")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, nav)
}

// Get handles GET /api/pages?path=.
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.cms.GetByPath(r.Context(), viewerID(r), r.URL.Query().Get("path"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load page")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Create handles POST /api/admin/pages.
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req PageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	page, err := h.cms.Create(r.Context(), accountID, service.PageInput{
		ParentID:     nullUUID(req.ParentID),
		Title:        req.Title,
		Slug:         req.Slug,
		Content:      req.Content,
		IsPublic:     req.IsPublic,
		InNavigation: req.InNavigation,
		Order:        req.Order,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create page")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, page)
}

// Update handles PUT /api/admin/pages/{id}.
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, pageID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PageUpdateRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	page, err := h.cms.Update(r.Context(), accountID, pageID, service.PageUpdate{
		Title:        req.Title,
		Slug:         req.Slug,
		Content:      req.Content,
		IsPublic:     req.IsPublic,
		InNavigation: req.InNavigation,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update page")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Move handles POST /api/admin/pages/{id}/move.
func (h *PageHandler) Move(w http.ResponseWriter, r *http.Request) {
	accountID, pageID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req MovePageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	page, err := h.cms.Move(r.Context(), accountID, pageID, nullUUID(req.ParentID), req.Order)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move page")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Delete handles DELETE /api/admin/pages/{id}.
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, pageID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.cms.Delete(r.Context(), accountID, pageID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete page")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
