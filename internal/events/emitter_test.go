package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDesignEvent(t *testing.T) *TaskRequestEvent {
	t.Helper()
	event, err := NewDesignRequestEvent(uuid.New())
	require.NoError(t, err)
	return event
}

func TestEmitEventWithoutHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())

	// Dropping an event silently is deliberate: a world without a
	// generated design just keeps its subject default theme.
	assert.NoError(t, emitter.EmitEvent(context.Background(), newDesignEvent(t)))
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := newDesignEvent(t)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
	assert.Equal(t, event.ID, second.events[0].ID)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())
	failing := &recordingHandler{err: errors.New("generator unavailable")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	err := emitter.EmitEvent(context.Background(), newDesignEvent(t))

	assert.EqualError(t, err, "generator unavailable")
	assert.Len(t, healthy.events, 1, "later handlers still receive the event")
}
