// Package rollbar reports unexpected errors to Rollbar.
package rollbar

import (
	"context"
	"log/slog"
	"os"

	"github.com/phrazzld/learnscripture-api/internal/config"
	pkgerrors "github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
)

// Reporter sends errors to an error tracker.
type Reporter interface {
	Report(ctx context.Context, err error, extras map[string]any)
	Close()
}

// NoopReporter discards every report.
type NoopReporter struct{}

// Report does nothing.
func (NoopReporter) Report(context.Context, error, map[string]any) {}

// Close does nothing.
func (NoopReporter) Close() {}

// RollbarReporter reports through the global rollbar client.
type RollbarReporter struct {
	logger *slog.Logger
}

// New returns a RollbarReporter when a token is configured and a
// NoopReporter otherwise.
func New(cfg config.ErrorTrackingConfig, codeVersion string, logger *slog.Logger) Reporter {
	if cfg.RollbarToken == "" {
		logger.Info("error tracking disabled, no rollbar token configured")
		return NoopReporter{}
	}

	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	host, _ := os.Hostname()

	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	rollbar.SetEnabled(true)

	logger.Info("error tracking enabled", "environment", env)
	return &RollbarReporter{logger: logger.With("component", "rollbar")}
}

// Report sends err at error level. Errors without a stack trace get one
// attached at the call site.
func (r *RollbarReporter) Report(ctx context.Context, err error, extras map[string]any) {
	if err == nil {
		return
	}
	rollbar.ErrorWithExtrasAndContext(ctx, rollbar.ERR, withStack(err), extras)
}

// Close waits for queued reports to be sent.
func (r *RollbarReporter) Close() {
	rollbar.Wait()
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func withStack(err error) error {
	var st stackTracer
	if pkgerrors.As(err, &st) {
		return err
	}
	return pkgerrors.WithStack(err)
}
