package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/platform/mailgun"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
	"github.com/phrazzld/learnscripture-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotInvited),
		errors.Is(err, service.ErrCommentingDisabled),
		errors.Is(err, service.ErrCreatorCannotLeave),
		errors.Is(err, service.ErrAccountInactive):
		return http.StatusForbidden

	case errors.Is(err, mailgun.ErrInvalidSignature),
		errors.Is(err, mailgun.ErrStaleTimestamp):
		return http.StatusNotAcceptable

	case store.IsNotFoundError(err),
		errors.Is(err, service.ErrNoVerses):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var ve *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, service.ErrAccountInactive):
		return "Account is inactive"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"
	case errors.Is(err, service.ErrForbidden):
		return "You are not allowed to do that"
	case errors.Is(err, service.ErrNotMember):
		return "You are not a member of this group"
	case errors.Is(err, service.ErrNotInvited):
		return "This group is by invitation only"
	case errors.Is(err, service.ErrCommentingDisabled):
		return "Commenting is disabled for your account"
	case errors.Is(err, service.ErrCreatorCannotLeave):
		return "The creator of a group cannot leave it"

	case errors.Is(err, mailgun.ErrInvalidSignature),
		errors.Is(err, mailgun.ErrStaleTimestamp):
		return "Invalid webhook signature"

	case errors.Is(err, store.ErrAccountNotFound):
		return "Account not found"
	case errors.Is(err, store.ErrVersionNotFound):
		return "Bible version not found"
	case errors.Is(err, store.ErrVerseSetNotFound):
		return "Verse set not found"
	case errors.Is(err, store.ErrStatusNotFound):
		return "Verse not found in your learning queue"
	case errors.Is(err, store.ErrEventNotFound):
		return "Event not found"
	case errors.Is(err, store.ErrGroupNotFound):
		return "Group not found"
	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, store.ErrPageNotFound):
		return "Page not found"
	case errors.Is(err, store.ErrDriveNotFound):
		return "No donation drive is running"
	case errors.Is(err, store.ErrMembershipMissing):
		return "You are not a member of this group"
	case errors.Is(err, service.ErrNoVerses):
		return "No verses found"
	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"
	case errors.Is(err, store.ErrSlugExists):
		return "Name already in use"
	case store.IsDuplicateError(err):
		return "Already exists"

	case errors.Is(err, domain.ErrInvalidReference):
		return "Invalid Bible reference"
	case errors.Is(err, domain.ErrInvalidMove):
		return "A page cannot be moved below itself"
	case errors.Is(err, domain.ErrInvalidAccuracy):
		return "Accuracy must be between 0 and 1"
	case errors.As(err, &ve):
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation error"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. When the error
// maps to a 500 and fallback is set, fallback is sent instead of the generic
// message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// handleRequestError reports a body that failed to decode or validate.
func handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
	case errors.Is(err, shared.ErrEmptyBody):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request body is required")
	default:
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("malformed request body", "error", err)
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
	}
}
