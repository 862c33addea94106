package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/mocks"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	buf, log := logger.NewTestLogger()

	var traceID string
	var ctxLogger bool
	h := TraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		ctxLogger = logger.FromContextOrDefault(r.Context(), nil) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Len(t, traceID, 32)
	assert.True(t, ctxLogger)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, traceID, entries[0]["trace_id"])
	assert.EqualValues(t, http.StatusTeapot, entries[0]["status"])
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	reporter := &mocks.MockReporter{}
	reporter.On("Report", mock.Anything, mock.MatchedBy(func(err error) bool {
		return err.Error() == "panic: boom"
	}), mock.Anything).Once()

	h := Recoverer(reporter)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/account", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	reporter.AssertExpectations(t)
}

func TestRequireModerator(t *testing.T) {
	t.Parallel()
	mod, reader := uuid.New(), uuid.New()
	check := func(_ context.Context, id uuid.UUID) (bool, error) {
		if id == uuid.Max {
			return false, errors.New("db down")
		}
		return id == mod, nil
	}

	tests := []struct {
		name       string
		account    uuid.UUID
		wantStatus int
	}{
		{name: "moderator", account: mod, wantStatus: http.StatusOK},
		{name: "reader", account: reader, wantStatus: http.StatusForbidden},
		{name: "anonymous", account: uuid.Nil, wantStatus: http.StatusUnauthorized},
		{name: "lookup failure", account: uuid.Max, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := RequireModerator(check)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			r := httptest.NewRequest(http.MethodPost, "/api/admin/pages", nil)
			if tt.account != uuid.Nil {
				r = r.WithContext(shared.WithAccountID(r.Context(), tt.account))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
