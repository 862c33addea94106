package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
)

// ModeratorCheck reports whether the account may use admin routes.
type ModeratorCheck func(ctx context.Context, accountID uuid.UUID) (bool, error)

// RequireModerator rejects requests whose authenticated account is not a
// moderator. It must run after Authenticate.
func RequireModerator(isModerator ModeratorCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.AccountID(r.Context())
			if id == uuid.Nil {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			ok, err := isModerator(r.Context(), id)
			if err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authorization error", err)
				return
			}
			if !ok {
				shared.RespondWithError(w, r, http.StatusForbidden, "Moderators only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
