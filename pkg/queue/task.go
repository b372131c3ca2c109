package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskflow/pkg/async"
)

// Job is the non-generic task surface consumed by queues and schedulers.
// It is implemented by Task only; the unexported methods keep the lifecycle
// hooks private to this package.
type Job interface {
	// ID returns the unique identifier assigned at construction.
	ID() uuid.UUID
	// Name returns the task name used in log attributes.
	Name() string
	// State returns the current lifecycle state.
	State() State
	// IsReady reports whether a scheduler may hand the task to a worker.
	// Polling it has a side effect: a pending task whose dependencies are
	// satisfied has its conditions evaluated, so it becomes ready on a
	// subsequent poll.
	IsReady() bool
	// IsExecuting reports whether the task currently occupies a worker.
	IsExecuting() bool
	// IsFinished reports whether the task reached the terminal state of its
	// current lifecycle.
	IsFinished() bool
	// IsCancelled reports the cooperative cancellation flag.
	IsCancelled() bool
	// Cancel sets the cancellation flag. Cancellation is cooperative: a task
	// already executing runs to completion, any other task reaches the
	// finished state without ever executing.
	Cancel()
	// Start executes the task on the calling goroutine. Schedulers call it
	// once IsReady reports true.
	Start()
	// EvaluateConditions advances a pending, non-cancelled task to ready.
	// Calling it in any other situation is a contract violation.
	EvaluateConditions()
	// AddObserver appends a lifecycle observer. Observers are notified in
	// registration order.
	AddObserver(o Observer)
	// ShouldRetry reports whether automatic retry attempts remain.
	ShouldRetry() bool
	// RetryCount returns the remaining retry budget.
	RetryCount() int

	markEnqueued() error
	willEnqueue()
	willRetry() error
	bindSignal(fn func())
	failed() bool
}

// Runner supplies the actual unit of work for a task. Run must eventually
// call Finish on the task it receives, on any goroutine.
type Runner[T any] interface {
	Run(t *Task[T])
}

// RunnerFunc adapts a function as a Runner.
type RunnerFunc[T any] func(t *Task[T])

func (f RunnerFunc[T]) Run(t *Task[T]) { f(t) }

// Task is a generic, stateful unit of asynchronous work with a defined
// lifecycle and a typed outcome. All mutable fields are guarded by one
// coarse per-task mutex, acquired once per logical operation and never held
// across observer, callback, or signal invocations.
type Task[T any] struct {
	id   uuid.UUID
	name string

	runner    Runner[T]
	cancelled atomic.Bool
	done      *async.Future[T]

	mu         sync.Mutex
	state      State
	result     *Result[T]
	retryCount int
	onComplete func(T)
	onError    func(error)
	observers  []Observer
	deps       []Job
	enqueued   bool
	signal     func()
}

var _ Job = (*Task[any])(nil)

// NewTask creates a task whose work is the given function. The function
// must eventually call Finish on the task. A nil run function produces a
// task that panics with ErrRunNotImplemented when executed.
func NewTask[T any](run func(t *Task[T])) *Task[T] {
	var runner Runner[T]
	if run != nil {
		runner = RunnerFunc[T](run)
	}
	return newTask("task", runner)
}

// NewRunnerTask creates a task from a Runner implementation. The task name
// defaults to the runner's type name.
func NewRunnerTask[T any](r Runner[T]) *Task[T] {
	name := "task"
	if r != nil {
		name = qualifiedStructName(r)
	}
	return newTask(name, r)
}

func newTask[T any](name string, r Runner[T]) *Task[T] {
	return &Task[T]{
		id:     uuid.New(),
		name:   name,
		runner: r,
		state:  StateInitialized,
		done:   async.New[T](),
	}
}

// ID returns the task's unique identifier.
func (t *Task[T]) ID() uuid.UUID { return t.id }

// Name returns the task name.
func (t *Task[T]) Name() string { return t.name }

// WithName sets a custom task name. Pre-enqueue only.
func (t *Task[T]) WithName(name string) *Task[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertConfigurable()
	if name != "" {
		t.name = name
	}
	return t
}

// WithRetry sets the retry budget: the number of automatic re-execution
// attempts performed after failed finishes. Pre-enqueue only; the budget
// never increases once the task is handed to a queue.
func (t *Task[T]) WithRetry(times int) *Task[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertConfigurable()
	if times >= 0 {
		t.retryCount = times
	}
	return t
}

// DependsOn registers upstream jobs that must finish before this task
// becomes ready. Pre-enqueue only.
func (t *Task[T]) DependsOn(jobs ...Job) *Task[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertConfigurable()
	for _, j := range jobs {
		if j != nil {
			t.deps = append(t.deps, j)
		}
	}
	return t
}

// OnComplete sets the callback invoked with the success value on a terminal
// finish. At most one completion callback is held; setting it once the task
// is executing is a contract violation.
func (t *Task[T]) OnComplete(fn func(T)) *Task[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state >= StateExecuting {
		panic(fmt.Errorf("%w: state %s", ErrCallbackAfterExecuting, t.state))
	}
	t.onComplete = fn
	return t
}

// OnError sets the callback invoked with the failure error on a terminal
// finish. Same single-slot and pre-executing rules as OnComplete.
func (t *Task[T]) OnError(fn func(error)) *Task[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state >= StateExecuting {
		panic(fmt.Errorf("%w: state %s", ErrCallbackAfterExecuting, t.state))
	}
	t.onError = fn
	return t
}

// assertConfigurable panics unless the task is still in its pre-enqueue
// configuration window. Callers must hold t.mu.
func (t *Task[T]) assertConfigurable() {
	if t.enqueued || t.state != StateInitialized {
		panic(fmt.Errorf("%w: state %s", ErrConfigureAfterEnqueue, t.state))
	}
}

// AddObserver appends o to the observer list. The list is append-only and
// survives retries, so lifecycle observers are registered once per task,
// not once per enqueue attempt.
func (t *Task[T]) AddObserver(o Observer) {
	if o == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// State returns the current lifecycle state.
func (t *Task[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the task outcome. The boolean is false until the task
// finished; after a retry reset the previous result is cleared, so a result
// is only ever observable while the task is in the finished state.
func (t *Task[T]) Result() (Result[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.result == nil {
		return Result[T]{}, false
	}
	return *t.result, true
}

// RetryCount returns the remaining retry budget.
func (t *Task[T]) RetryCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.retryCount
}

// ShouldRetry reports whether automatic retry attempts remain.
func (t *Task[T]) ShouldRetry() bool {
	return t.RetryCount() > 0
}

// IsCancelled reports the cooperative cancellation flag.
func (t *Task[T]) IsCancelled() bool {
	return t.cancelled.Load()
}

// Cancel sets the cancellation flag and wakes the scheduler so the task can
// be reclaimed.
func (t *Task[T]) Cancel() {
	t.cancelled.Store(true)
	t.notify()
}

// IsExecuting reports whether the task currently occupies a worker.
func (t *Task[T]) IsExecuting() bool {
	return t.State() == StateExecuting
}

// IsFinished reports whether the task reached the terminal state.
func (t *Task[T]) IsFinished() bool {
	return t.State() == StateFinished
}

// IsReady implements the scheduler readiness poll:
//
//   - initialized: ready only when cancelled, so a never-started task can be
//     reclaimed
//   - pending: cancelled is a fast path to finish; otherwise satisfied
//     dependencies trigger condition evaluation as a side effect and the
//     task becomes ready on a later poll
//   - ready: dependencies satisfied or cancelled
//   - executing, finished: never ready
func (t *Task[T]) IsReady() bool {
	t.mu.Lock()
	state := t.state
	deps := slices.Clone(t.deps)
	t.mu.Unlock()

	cancelled := t.cancelled.Load()

	switch state {
	case StateInitialized:
		return cancelled
	case StatePending:
		if cancelled {
			return true
		}
		if depsFinished(deps) {
			t.tryEvaluateConditions()
		}
		return false
	case StateReady:
		return depsFinished(deps) || cancelled
	default:
		return false
	}
}

func depsFinished(deps []Job) bool {
	for _, d := range deps {
		if !d.IsFinished() {
			return false
		}
	}
	return true
}

// EvaluateConditions transitions the task from pending to ready. No
// condition policy is attached in this core, so evaluation advances
// unconditionally. Calling it outside the pending state or on a cancelled
// task is a contract violation.
func (t *Task[T]) EvaluateConditions() {
	t.mu.Lock()
	if t.state != StatePending || t.cancelled.Load() {
		state := t.state
		t.mu.Unlock()
		panic(fmt.Errorf("%w: state %s", ErrConditionsNotEvaluable, state))
	}
	t.state = StateReady
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
}

// tryEvaluateConditions is the poll-path variant of EvaluateConditions.
// Readiness polls can race with Cancel, so this re-checks the precondition
// under the lock and backs off instead of panicking.
func (t *Task[T]) tryEvaluateConditions() {
	t.mu.Lock()
	if t.state != StatePending || t.cancelled.Load() {
		t.mu.Unlock()
		return
	}
	t.state = StateReady
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
}

// Start executes the task on the calling goroutine. A cancelled task goes
// straight to finished, skipping execution and emitting only the finish
// notification.
func (t *Task[T]) Start() {
	if t.cancelled.Load() {
		t.finishCancelled()
		return
	}
	t.main()
}

// main transitions to executing, notifies observers, and hands control to
// the run hook. The task must be ready.
func (t *Task[T]) main() {
	t.mu.Lock()
	if t.state != StateReady {
		state := t.state
		t.mu.Unlock()
		panic(fmt.Errorf("%w: state %s", ErrNotReady, state))
	}
	t.state = StateExecuting
	observers := slices.Clone(t.observers)
	runner := t.runner
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
	for _, o := range observers {
		o.TaskDidStart(t)
	}

	if t.cancelled.Load() {
		t.finishCancelled()
		return
	}
	if runner == nil {
		panic(fmt.Errorf("%w: task %q", ErrRunNotImplemented, t.name))
	}
	runner.Run(t)
}

// Finish records the task outcome and completes the lifecycle: the state
// moves to finished, observers are notified in registration order, and on a
// terminal finish exactly one of the two callbacks fires, matching the
// result variant. Safe to call from any goroutine; the run hook must call
// it exactly once per lifecycle.
func (t *Task[T]) Finish(result Result[T]) {
	t.mu.Lock()
	if !t.state.canTransition(StateFinished, t.retryCount > 0, t.cancelled.Load()) {
		from := t.state
		t.mu.Unlock()
		panic(&InvalidTransitionError{From: from, To: StateFinished})
	}
	t.result = &result
	t.state = StateFinished
	observers := slices.Clone(t.observers)
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
	for _, o := range observers {
		o.TaskDidFinish(t)
	}

	// A retry observer may have reset the lifecycle back to initialized, and
	// the retried attempt may even have finished again before this call
	// resumes. Callbacks and the awaited outcome belong to the terminal
	// finish only, so the stored result must still be this call's result:
	// willRetry clears it and a later Finish replaces it.
	t.mu.Lock()
	if t.state != StateFinished || t.result != &result {
		t.mu.Unlock()
		return
	}
	onComplete, onError := t.onComplete, t.onError
	t.mu.Unlock()

	if err := result.Err(); err != nil {
		if onError != nil {
			onError(err)
		}
		var zero T
		t.done.Resolve(zero, err)
		return
	}

	v, _ := result.Value()
	if onComplete != nil {
		onComplete(v)
	}
	t.done.Resolve(v, nil)
}

// finishCancelled moves a cancelled task to finished without a result.
// Observers receive the finish notification; no callback fires.
func (t *Task[T]) finishCancelled() {
	t.mu.Lock()
	if t.state == StateFinished {
		t.mu.Unlock()
		return
	}
	t.state = StateFinished
	observers := slices.Clone(t.observers)
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
	for _, o := range observers {
		o.TaskDidFinish(t)
	}

	var zero T
	t.done.Resolve(zero, ErrTaskCancelled)
}

// Await blocks until the task's terminal finish and returns its outcome.
// Intermediate finishes that lead to a retry do not resolve it; a cancelled
// task resolves with ErrTaskCancelled.
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	return t.done.Await(ctx)
}

// AwaitWithTimeout is Await with a deadline; it returns async.ErrTimeout
// when the task does not finish in time.
func (t *Task[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	return t.done.AwaitWithTimeout(timeout)
}

// markEnqueued claims the task for a queue. A task is owned by at most one
// queue at a time; the claim survives retries so lifecycle observers are
// attached only once.
func (t *Task[T]) markEnqueued() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enqueued {
		return ErrTaskAlreadyQueued
	}
	t.enqueued = true
	return nil
}

// willEnqueue transitions the task from initialized to pending as the final
// step of the enqueue sequence.
func (t *Task[T]) willEnqueue() {
	t.mu.Lock()
	if !t.state.canTransition(StatePending, t.retryCount > 0, t.cancelled.Load()) {
		from := t.state
		t.mu.Unlock()
		panic(&InvalidTransitionError{From: from, To: StatePending})
	}
	t.state = StatePending
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
}

// willRetry consumes one retry attempt and resets the lifecycle so the task
// can be re-enqueued. The stale result is cleared: a result is only valid
// while the task is finished. Returns ErrRetryBudgetExhausted when no
// attempts remain; the budget is never driven below zero.
func (t *Task[T]) willRetry() error {
	t.mu.Lock()
	if t.retryCount <= 0 {
		t.mu.Unlock()
		return ErrRetryBudgetExhausted
	}
	if !t.state.canTransition(StateInitialized, true, t.cancelled.Load()) {
		from := t.state
		t.mu.Unlock()
		panic(&InvalidTransitionError{From: from, To: StateInitialized})
	}
	t.retryCount--
	t.result = nil
	t.state = StateInitialized
	sig := t.signal
	t.mu.Unlock()

	if sig != nil {
		sig()
	}
	return nil
}

// bindSignal registers the scheduler wake callback fired after every state
// change. Readiness, executing, and finished are pure functions of state,
// so this single post-change signal is enough for a scheduler to recompute
// all three.
func (t *Task[T]) bindSignal(fn func()) {
	t.mu.Lock()
	t.signal = fn
	t.mu.Unlock()
}

// notify fires the wake signal outside the lock.
func (t *Task[T]) notify() {
	t.mu.Lock()
	sig := t.signal
	t.mu.Unlock()
	if sig != nil {
		sig()
	}
}

// failed reports whether the current lifecycle finished with the error
// variant. A cancelled finish carries no result and does not count.
func (t *Task[T]) failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result != nil && t.result.IsError()
}
