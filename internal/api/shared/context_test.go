package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTraceID(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	assert.Len(t, traceID, 32, "trace ID should be 32 hex characters")
	assert.Regexp(t, "^[0-9a-f]{32}$", traceID)
}

func TestSetTraceIDUniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		traceID := GetTraceID(SetTraceID(context.Background()))
		assert.False(t, seen[traceID], "trace ID %q issued twice", traceID)
		seen[traceID] = true
	}
}

func TestGetTraceIDWithoutMiddleware(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetTraceID(context.Background()))
}

func TestGetTraceIDIgnoresForeignValue(t *testing.T) {
	t.Parallel()

	// A non-string value under the key must not be returned as a trace ID.
	ctx := context.WithValue(context.Background(), TraceIDKey, 12345)
	assert.Empty(t, GetTraceID(ctx))
}
