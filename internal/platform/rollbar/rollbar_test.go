package rollbar

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew_NoTokenIsNoop(t *testing.T) {
	t.Parallel()
	_, log := logger.NewTestLogger()

	r := New(config.ErrorTrackingConfig{}, "dev", log)
	assert.IsType(t, NoopReporter{}, r)

	r.Report(context.Background(), errors.New("ignored"), nil)
	r.Close()
}

func TestWithStack(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	wrapped := withStack(plain)
	assert.ErrorIs(t, wrapped, plain)

	var st stackTracer
	assert.True(t, pkgerrors.As(wrapped, &st))

	already := pkgerrors.New("has stack")
	assert.Same(t, already, withStack(already))
}
