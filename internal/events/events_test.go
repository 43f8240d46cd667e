package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDesignRequestEvent(t *testing.T) {
	t.Parallel()

	worldID := uuid.New()
	event, err := NewDesignRequestEvent(worldID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeDesignGeneration, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, time.Second)

	var payload DesignRequestPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, worldID, payload.WorldID)
}

func TestNewTaskRequestEventRejectsUnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("design_generation", func() {})
	assert.Error(t, err)
}

func TestUnmarshalPayloadIntoWrongShape(t *testing.T) {
	t.Parallel()

	event, err := NewDesignRequestEvent(uuid.New())
	require.NoError(t, err)

	var wrong []int
	assert.Error(t, event.UnmarshalPayload(&wrong))
}

// recordingHandler captures every event it receives.
type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestRecordingHandlerSatisfiesInterface(t *testing.T) {
	t.Parallel()

	var _ EventHandler = (*recordingHandler)(nil)

	h := &recordingHandler{err: errors.New("handler unavailable")}
	event, err := NewDesignRequestEvent(uuid.New())
	require.NoError(t, err)

	assert.Error(t, h.HandleEvent(context.Background(), event))
	require.Len(t, h.events, 1)
	assert.Equal(t, event.ID, h.events[0].ID)
}
