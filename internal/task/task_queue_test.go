package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue and read", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(2, testLogger(t))
		task := NewMockTask("a")

		require.NoError(t, q.Enqueue(task))
		assert.Equal(t, 1, q.Len())
		assert.Same(t, task, <-q.GetChannel())
	})

	t.Run("full", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, testLogger(t))
		require.NoError(t, q.Enqueue(NewMockTask("a")))

		err := q.Enqueue(NewMockTask("b"))
		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("closed", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(1, testLogger(t))
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(NewMockTask("a")), ErrQueueClosed)
		_, open := <-q.GetChannel()
		assert.False(t, open)
	})

	t.Run("non-positive size", func(t *testing.T) {
		t.Parallel()
		q := NewTaskQueue(0, testLogger(t))
		assert.NoError(t, q.Enqueue(NewMockTask("a")))
	})
}
