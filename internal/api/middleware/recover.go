package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/learnscripture-api/internal/api/shared"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/platform/rollbar"
)

// Recoverer turns handler panics into 500 responses and reports them.
func Recoverer(reporter rollbar.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				logger.FromContextOrDefault(r.Context(), slog.Default()).Error("handler panicked",
					"error", err,
					"path", r.URL.Path,
					"stack", string(debug.Stack()))
				reporter.Report(r.Context(), err, map[string]any{
					"method":   r.Method,
					"path":     r.URL.Path,
					"trace_id": shared.GetTraceID(r.Context()),
				})
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
