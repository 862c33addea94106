package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// EventHandler serves the activity feed and comments on events.
type EventHandler struct {
	events   service.EventService
	comments service.CommentService
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events service.EventService, comments service.CommentService) *EventHandler {
	return &EventHandler{events: events, comments: comments}
}

// Dashboard handles GET /api/events/dashboard.
func (h *EventHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	evts, err := h.events.Dashboard(r.Context(), accountID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, evts)
}

// AccountEvents handles GET /api/accounts/{username}/events.
func (h *EventHandler) AccountEvents(w http.ResponseWriter, r *http.Request) {
	evts, err := h.events.AccountEvents(r.Context(), viewerID(r), chi.URLParam(r, "username"), pageParam(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load events")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, evts)
}

// ListComments handles GET /api/events/{id}/comments.
func (h *EventHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	comments, err := h.comments.ListForEvent(r.Context(), viewerID(r), eventID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load comments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, comments)
}

// AddComment handles POST /api/events/{id}/comments.
func (h *EventHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	accountID, eventID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	comment, err := h.comments.AddToEvent(r.Context(), accountID, eventID, req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// HideComment handles POST /api/comments/{id}/hide.
func (h *EventHandler) HideComment(w http.ResponseWriter, r *http.Request) {
	accountID, commentID, ok := accountAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.comments.Hide(r.Context(), accountID, commentID); err != nil {
		HandleAPIError(w, r, err, "Failed to hide comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
