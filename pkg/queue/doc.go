// Package queue provides a generic, observable unit-of-work abstraction (a
// task) and a queue that schedules tasks, tracks their lifecycle, and
// supports automatic retry.
//
// The package is organised around four components:
//
//   - Task: a generic, stateful unit of work with a typed Result
//   - TaskQueue: attaches lifecycle observers and hands tasks to a Scheduler
//   - Scheduler: the execution primitive; Pool is the in-process default
//   - Observer and Delegate: lifecycle listeners at task and queue level
//
// # Lifecycle
//
// A task moves through a totally ordered set of states:
//
//	initialized -> pending -> ready -> executing -> finished
//
// Forward single-step progression is always legal, a cancelled task may
// jump to finished from any state, and a retry moves a finished task back
// to initialized. Every other transition is a programming error and panics
// with an InvalidTransitionError. Schedulers drive the machine by polling
// IsReady: a pending task whose dependencies are satisfied has its
// conditions evaluated as a side effect of the poll and reports ready on a
// subsequent poll.
//
// # Usage
//
//	q, _ := queue.NewDefault()
//	defer q.Close()
//
//	t := queue.NewTask(func(t *queue.Task[int]) {
//		t.Finish(queue.NewValue(42))
//	}).
//		WithRetry(2).
//		OnComplete(func(v int) { fmt.Println("got", v) }).
//		OnError(func(err error) { fmt.Println("failed:", err) })
//
//	_ = q.Add(t)
//	v, err := t.Await(context.Background())
//
// # Retry
//
// WithRetry(n) grants a budget of n automatic re-executions. A finish with
// the error variant consumes one attempt: the queue resets the task to
// initialized, clears the stale result, and re-enqueues it without
// re-attaching observers. Callbacks, Await, and the delegate's DidFinish
// fire only on the terminal finish; DidRetry fires per attempt. When the
// budget is exhausted the retry is skipped and the finish proceeds as
// terminal.
//
// # Concurrency
//
// Each task guards its mutable state with one coarse mutex acquired once
// per logical operation and never held across observer, callback, or
// delegate invocations. Cancellation is a cooperative flag checked at
// readiness evaluation and before execution; a running task is never
// preempted. Finish is safe to call from any goroutine.
//
// # Error Handling
//
// Expected failures travel as the error variant of Result and drive the
// retry path. Contract violations (disallowed transitions, executing a
// task without a run hook, mutating callbacks after execution started)
// panic: they indicate bugs in the calling code, not recoverable
// conditions. Recoverable queue misuse returns sentinel errors such as
// ErrNilTask and ErrTaskAlreadyQueued, checkable with errors.Is.
package queue
