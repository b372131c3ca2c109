package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingTask(t *testing.T) *Task[int] {
	t.Helper()
	task := NewTask(func(t *Task[int]) { t.Finish(NewValue(1)) })
	require.NoError(t, task.markEnqueued())
	task.willEnqueue()
	return task
}

func TestPool_NextReadyScansInteractiveFirst(t *testing.T) {
	t.Parallel()

	pool := NewPool()

	background := pendingTask(t)
	standard := pendingTask(t)
	interactive := pendingTask(t)

	pool.Enqueue(background, QoSBackground)
	pool.Enqueue(standard, QoSDefault)
	pool.Enqueue(interactive, QoSUserInteractive)

	// First scan only evaluates conditions; nothing is ready yet.
	_, ok := pool.nextReady()
	require.False(t, ok)

	got := make([]*Task[int], 0, 3)
	for range 3 {
		job, ok := pool.nextReady()
		require.True(t, ok)
		got = append(got, job.(*Task[int]))
	}
	assert.Equal(t, []*Task[int]{interactive, standard, background}, got)

	_, ok = pool.nextReady()
	assert.False(t, ok)
	assert.Zero(t, pool.QueuedCount())
}

func TestPool_EnqueueCoercesInvalidQoS(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	task := pendingTask(t)
	pool.Enqueue(task, QoS(42))

	assert.Len(t, pool.buckets[int(QoSUserInteractive-QoSDefault)], 1)
}

func TestPool_NextReadyReclaimsFinished(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	task := pendingTask(t)
	pool.Enqueue(task, QoSDefault)

	require.False(t, task.IsReady())
	require.True(t, task.IsReady())
	task.Start()
	require.True(t, task.IsFinished())

	_, ok := pool.nextReady()
	assert.False(t, ok)
	assert.Zero(t, pool.QueuedCount(), "finished jobs are dropped during the scan")
}
