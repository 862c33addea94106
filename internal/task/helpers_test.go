package task

import (
	"log/slog"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	_, log := logger.NewTestLogger()
	return log
}
