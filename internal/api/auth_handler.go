package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
)

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger.With("component", "auth_handler")}
}

func authResponse(a *domain.Account, pair *auth.TokenPair) AuthResponse {
	resp := AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
	if a != nil {
		resp.AccountID = a.ID
		resp.Username = a.Username
	}
	return resp
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, pair, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ReferredBy: req.ReferredBy,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create account")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("account registered", "account_id", account.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, authResponse(account, pair))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, pair, err := h.accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(account, pair))
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(nil, pair))
}
