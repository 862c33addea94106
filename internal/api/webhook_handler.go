package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/platform/mailgun"
	"github.com/phrazzld/learnscripture-api/internal/service"
)

// maxWebhookBytes bounds webhook bodies.
const maxWebhookBytes = 64 << 10

// DonationHandler serves the donation drive banner and the PayPal IPN webhook.
type DonationHandler struct {
	donations service.DonationService
	logger    *slog.Logger
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(donations service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, logger: logger.With("component", "donation_handler")}
}

// CurrentDrive handles GET /api/donations/current. It answers 204 when no
// drive should be shown.
func (h *DonationHandler) CurrentDrive(w http.ResponseWriter, r *http.Request) {
	status, err := h.donations.CurrentDrive(r.Context(), viewerID(r))
	if MapErrorToStatusCode(err) == http.StatusNotFound {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load donation drive")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// PayPalIPN handles POST /webhooks/paypal/ipn. PayPal only needs a 200; a
// 500 makes it retry, which is wanted only when verification was impossible.
func (h *DonationHandler) PayPalIPN(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Unreadable body", err)
		return
	}

	outcome, err := h.donations.HandleIPN(r.Context(), string(raw))
	if errors.Is(err, service.ErrIPNVerifyFailed) {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Verification unavailable", err)
		return
	}
	if err != nil {
		// Logged but acknowledged; PayPal retries would not help.
		log.Error("failed to apply payment notification", "error", err)
	}
	log.Debug("payment notification handled", "outcome", outcome)
	w.WriteHeader(http.StatusOK)
}

// BounceHandler serves the Mailgun event webhook.
type BounceHandler struct {
	bounces service.BounceService
}

// NewBounceHandler creates a BounceHandler.
func NewBounceHandler(bounces service.BounceService) *BounceHandler {
	return &BounceHandler{bounces: bounces}
}

// MailgunEvent handles POST /webhooks/mailgun/events.
func (h *BounceHandler) MailgunEvent(w http.ResponseWriter, r *http.Request) {
	var hook mailgun.Webhook
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBytes)).Decode(&hook); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	marked, err := h.bounces.HandleEvent(r.Context(), &hook)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, shared.WithElevatedLogLevel())
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]int64{"marked": marked})
}
