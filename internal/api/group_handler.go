package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// GroupHandler serves groups, memberships and group walls.
type GroupHandler struct {
	groups   service.GroupService
	comments service.CommentService
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups service.GroupService, comments service.CommentService) *GroupHandler {
	return &GroupHandler{groups: groups, comments: comments}
}

func (req GroupRequest) input() service.GroupInput {
	return service.GroupInput{Name: req.Name, Description: req.Description, Public: req.Public, Open: req.Open}
}

// List handles GET /api/groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context(), viewerID(r), pageParam(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list groups")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, groups)
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req GroupRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	group, err := h.groups.Create(r.Context(), accountID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create group")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, group)
}

// Get handles GET /api/groups/{slug}.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.Get(r.Context(), viewerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load group")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, group)
}

// Update handles PUT /api/groups/{slug}.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req GroupRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	group, err := h.groups.Update(r.Context(), accountID, chi.URLParam(r, "slug"), req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update group")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, group)
}

// Join handles POST /api/groups/{slug}/join.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	if err := h.groups.Join(r.Context(), accountID, chi.URLParam(r, "slug")); err != nil {
		HandleAPIError(w, r, err, "Failed to join group")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leave handles POST /api/groups/{slug}/leave.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	if err := h.groups.Leave(r.Context(), accountID, chi.URLParam(r, "slug")); err != nil {
		HandleAPIError(w, r, err, "Failed to leave group")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invite handles POST /api/groups/{slug}/invitations.
func (h *GroupHandler) Invite(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req InvitationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.groups.Invite(r.Context(), accountID, chi.URLParam(r, "slug"), req.Username); err != nil {
		HandleAPIError(w, r, err, "Failed to invite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /api/groups/{slug}/members.
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.groups.Members(r.Context(), viewerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load members")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, members)
}

// Leaderboard handles GET /api/groups/{slug}/leaderboard?period=&page=.
func (h *GroupHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	entries, err := h.groups.Leaderboard(r.Context(), viewerID(r), chi.URLParam(r, "slug"), period, pageParam(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// ListComments handles GET /api/groups/{slug}/comments.
func (h *GroupHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListForGroup(r.Context(), viewerID(r), chi.URLParam(r, "slug"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load comments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, comments)
}

// AddComment handles POST /api/groups/{slug}/comments.
func (h *GroupHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	comment, err := h.comments.AddToGroupWall(r.Context(), accountID, chi.URLParam(r, "slug"), req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}
