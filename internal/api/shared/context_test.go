package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	id := GetTraceID(withTrace)
	assert.Len(t, id, 2*TraceIDLength)
	assert.Empty(t, GetTraceID(ctx), "parent context is unchanged")
	assert.NotEqual(t, id, GetTraceID(SetTraceID(ctx)), "ids are random")
}

func TestSetTraceID_ReusesSpanTraceID(t *testing.T) {
	t.Parallel()

	traceID := trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, traceID.String(), GetTraceID(SetTraceID(ctx)))
}

func TestAccountID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uuid.Nil, AccountID(context.Background()))
	assert.Equal(t, uuid.Nil, AccountID(context.WithValue(context.Background(), AccountIDContextKey, "nope")))

	id := uuid.New()
	assert.Equal(t, id, AccountID(WithAccountID(context.Background(), id)))
}
