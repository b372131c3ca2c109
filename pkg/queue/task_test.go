package queue_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/async"
	"github.com/dmitrymomot/taskflow/pkg/queue"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("fresh task is initialized", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		assert.Equal(t, queue.StateInitialized, task.State())
		assert.False(t, task.IsCancelled())
		assert.Zero(t, task.RetryCount())
		assert.NotEmpty(t, task.ID())
		assert.Equal(t, "task", task.Name())

		_, ok := task.Result()
		assert.False(t, ok, "result must be absent until finished")
	})

	t.Run("runner task takes its type name", func(t *testing.T) {
		t.Parallel()

		task := queue.NewRunnerTask[int](staticRunner{value: 9})
		assert.Contains(t, task.Name(), "staticRunner")
	})

	t.Run("builder configures name, retry and callbacks", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {}).
			WithName("report").
			WithRetry(3).
			OnComplete(func(int) {}).
			OnError(func(error) {})

		assert.Equal(t, "report", task.Name())
		assert.Equal(t, 3, task.RetryCount())
		assert.True(t, task.ShouldRetry())
	})
}

type staticRunner struct {
	value int
}

func (r staticRunner) Run(t *queue.Task[int]) {
	t.Finish(queue.NewValue(r.value))
}

func TestTask_ReadinessPolling(t *testing.T) {
	t.Parallel()

	newPending := func(t *testing.T) (*manualScheduler, *queue.Task[int]) {
		t.Helper()
		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)
		task := queue.NewTask(func(t *queue.Task[int]) { t.Finish(queue.NewValue(1)) })
		require.NoError(t, q.Add(task))
		return sched, task
	}

	t.Run("initialized is not ready", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		assert.False(t, task.IsReady())
	})

	t.Run("cancelled initialized task is reclaimable", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		task.Cancel()
		assert.True(t, task.IsReady())
	})

	t.Run("pending poll advances via condition evaluation", func(t *testing.T) {
		t.Parallel()

		_, task := newPending(t)
		require.Equal(t, queue.StatePending, task.State())

		// First poll triggers condition evaluation as a side effect and
		// reports not ready; readiness appears on the next poll.
		assert.False(t, task.IsReady())
		assert.Equal(t, queue.StateReady, task.State())
		assert.True(t, task.IsReady())
	})

	t.Run("executing and finished are never ready", func(t *testing.T) {
		t.Parallel()

		sched, task := newPending(t)
		sched.pump(t)
		require.Equal(t, queue.StateFinished, task.State())
		assert.False(t, task.IsReady())
	})
}

func TestTask_Dependencies(t *testing.T) {
	t.Parallel()

	sched := &manualScheduler{}
	q, err := queue.NewTaskQueue(sched)
	require.NoError(t, err)

	upstream := queue.NewTask(func(t *queue.Task[int]) { t.Finish(queue.NewValue(1)) })
	downstream := queue.NewTask(func(t *queue.Task[int]) { t.Finish(queue.NewValue(2)) }).
		DependsOn(upstream)

	// Enqueue downstream first so the scheduler tries it before upstream.
	require.NoError(t, q.Add(downstream))

	// The downstream task stays pending: its condition evaluation is gated
	// on the unfinished upstream job.
	assert.False(t, downstream.IsReady())
	assert.Equal(t, queue.StatePending, downstream.State())

	require.NoError(t, q.Add(upstream))
	sched.pump(t)
	// First pass gives up on the gated downstream task; once the upstream
	// job is finished a second pass runs it.
	sched.pump(t)

	assert.Equal(t, queue.StateFinished, upstream.State())
	assert.Equal(t, queue.StateFinished, downstream.State())
}

func TestTask_ContractViolations(t *testing.T) {
	t.Parallel()

	// transitionPanic runs fn, expecting it to panic with an
	// InvalidTransitionError, and returns the recovered error.
	transitionPanic := func(t *testing.T, fn func()) (err error) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			var ok bool
			err, ok = r.(error)
			require.True(t, ok, "expected an error panic")
			require.True(t, queue.IsInvalidTransitionError(err))
		}()
		fn()
		return nil
	}

	t.Run("finish before start", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		err := transitionPanic(t, func() { task.Finish(queue.NewValue(1)) })
		assert.EqualError(t, err,
			"invalid task state transition from 'initialized' to 'finished'")
	})

	t.Run("double finish", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewTask(func(t *queue.Task[int]) { t.Finish(queue.NewValue(1)) })
		require.NoError(t, q.Add(task))
		sched.pump(t)

		perr := transitionPanic(t, func() { task.Finish(queue.NewValue(2)) })
		assert.EqualError(t, perr,
			"invalid task state transition from 'finished' to 'finished'")
	})

	t.Run("evaluate conditions outside pending", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		assert.Panics(t, func() { task.EvaluateConditions() })
	})

	t.Run("evaluate conditions on cancelled task", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewTask(func(t *queue.Task[int]) {})
		require.NoError(t, q.Add(task))
		task.Cancel()

		assert.Panics(t, func() { task.EvaluateConditions() })
	})

	t.Run("start before ready", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		assert.Panics(t, func() { task.Start() })
	})

	t.Run("run hook not implemented", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewTask[int](nil)
		require.NoError(t, q.Add(task))

		require.False(t, task.IsReady())
		require.True(t, task.IsReady())
		assert.Panics(t, func() { task.Start() })
	})

	t.Run("callbacks rejected once executing", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewTask(func(tk *queue.Task[int]) {
			assert.Panics(t, func() { tk.OnComplete(func(int) {}) })
			assert.Panics(t, func() { tk.OnError(func(error) {}) })
			tk.Finish(queue.NewValue(1))
		})
		require.NoError(t, q.Add(task))
		sched.pump(t)

		require.Equal(t, queue.StateFinished, task.State())
	})

	t.Run("builder rejected after enqueue", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewTask(func(t *queue.Task[int]) { t.Finish(queue.NewValue(1)) })
		require.NoError(t, q.Add(task))

		assert.Panics(t, func() { task.WithRetry(5) })
		assert.Panics(t, func() { task.WithName("late") })
		assert.Panics(t, func() { task.DependsOn(queue.NewTask(func(t *queue.Task[int]) {})) })
	})
}

func TestTask_ResultRetention(t *testing.T) {
	t.Parallel()

	sched := &manualScheduler{}
	q, err := queue.NewTaskQueue(sched)
	require.NoError(t, err)

	attempts := 0
	resultSeenMidRetry := false
	task := queue.NewTask(func(t *queue.Task[int]) {
		attempts++
		if attempts == 1 {
			t.Finish(queue.NewError[int](errors.New("first")))
			return
		}
		// Second lifecycle: the stale result from the failed attempt must
		// have been cleared by the retry reset.
		if _, ok := t.Result(); ok {
			resultSeenMidRetry = true
		}
		t.Finish(queue.NewValue(10))
	}).WithRetry(1)

	require.NoError(t, q.Add(task))
	sched.pump(t)

	assert.False(t, resultSeenMidRetry, "result is only valid while finished")

	res, ok := task.Result()
	require.True(t, ok)
	v, ok := res.Value()
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestTask_Await(t *testing.T) {
	t.Parallel()

	t.Run("timeout on a task that never finishes", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask(func(t *queue.Task[int]) {})
		_, err := task.AwaitWithTimeout(10 * time.Millisecond)
		assert.ErrorIs(t, err, async.ErrTimeout)
	})

	t.Run("resolves with the terminal value", func(t *testing.T) {
		t.Parallel()

		sched := &manualScheduler{}
		q, err := queue.NewTaskQueue(sched)
		require.NoError(t, err)

		task := queue.NewRunnerTask[int](staticRunner{value: 9})
		require.NoError(t, q.Add(task))
		sched.pump(t)

		v, err := task.AwaitWithTimeout(time.Second)
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	})
}
