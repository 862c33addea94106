package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// AccountHandler serves the signed-in account's profile.
type AccountHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger.With("component", "account_handler")}
}

// Get handles GET /api/account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	profile, err := h.accounts.GetProfile(r.Context(), accountID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load account")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Update handles PUT /api/account.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	profile, err := h.accounts.UpdateProfile(r.Context(), accountID, service.ProfileUpdate{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		RemindAfter:       req.RemindAfter,
		RemindEvery:       req.RemindEvery,
		EnableCommenting:  req.EnableCommenting,
		DefaultVersion:    req.DefaultVersion,
		TestingMethod:     req.TestingMethod,
		InterfaceLanguage: req.InterfaceLanguage,
		TrackLearning:     req.TrackLearning,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update account")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// ChangePassword handles POST /api/account/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
