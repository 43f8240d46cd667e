package task

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTaskQueueEnqueueAndConsume(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(3, queueTestLogger())

	first := newMockTask()
	second := newMockTask()
	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))

	ch := queue.GetChannel()
	assert.Equal(t, first.ID(), (<-ch).ID(), "tasks come out in submission order")
	assert.Equal(t, second.ID(), (<-ch).ID())
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, queueTestLogger())
	require.NoError(t, queue.Enqueue(newMockTask()))

	err := queue.Enqueue(newMockTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueRejectsAfterClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, queueTestLogger())
	queue.Close()

	assert.ErrorIs(t, queue.Enqueue(newMockTask()), ErrQueueClosed)
}

func TestTaskQueueCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, queueTestLogger())
	queue.Close()
	assert.NotPanics(t, queue.Close)
}

func TestTaskQueueChannelClosesOnClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, queueTestLogger())
	queued := newMockTask()
	require.NoError(t, queue.Enqueue(queued))
	queue.Close()

	ch := queue.GetChannel()
	got, ok := <-ch
	require.True(t, ok, "buffered task is still delivered after close")
	assert.Equal(t, queued.ID(), got.ID())

	_, ok = <-ch
	assert.False(t, ok, "channel is closed once drained")
}
