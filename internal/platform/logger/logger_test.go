package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tc := range tests {
		level, ok := logger.ParseLevel(tc.in)
		assert.Equal(t, tc.level, level, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)

	l.Info("hidden")
	slog.Warn("shown", "key", "value")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "learnscripture-api", entries[0]["service"])
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()
	fallback := slog.Default()
	_, custom := logger.NewTestLogger()

	//nolint:staticcheck // nil context is handled explicitly
	assert.Equal(t, fallback, logger.FromContextOrDefault(nil, fallback))
	assert.Equal(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Equal(t, custom, logger.FromContextOrDefault(logger.WithLogger(context.Background(), custom), fallback))
}

func TestWithLoggerRejectsNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		logger.WithLogger(context.Background(), nil)
	})
}
