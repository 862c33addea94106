package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/domain"
)

// viewerID returns the authenticated account, or uuid.Nil on routes that
// allow anonymous access.
func viewerID(r *http.Request) uuid.UUID {
	return shared.AccountID(r.Context())
}

// requireAccount returns the authenticated account or writes a 401.
func requireAccount(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := shared.AccountID(r.Context())
	if id == uuid.Nil {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(name, "is required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// accountAndPathUUID combines requireAccount and pathUUID, writing the error
// response when either fails.
func accountAndPathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, uuid.UUID, bool) {
	accountID, ok := requireAccount(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := pathUUID(r, name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, id, true
}

// pageParam reads the 1-based "page" query parameter. Missing or invalid
// values give page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// decodeRequest decodes and validates the JSON body into v, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		handleRequestError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		handleRequestError(w, r, err)
		return false
	}
	return true
}
