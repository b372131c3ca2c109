package queue

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSchedulerNil is returned when a nil scheduler is provided
	ErrSchedulerNil = errors.New("scheduler cannot be nil")

	// ErrNilTask is returned when attempting to add a nil task
	ErrNilTask = errors.New("task cannot be nil")

	// ErrTaskAlreadyQueued is returned when a task is added to a queue twice
	ErrTaskAlreadyQueued = errors.New("task is already owned by a queue")

	// ErrRetryBudgetExhausted signals that no retry attempts remain; the
	// retry is skipped, never performed partially
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// ErrTaskCancelled resolves Await on tasks that finished through
	// cancellation and therefore carry no result
	ErrTaskCancelled = errors.New("task cancelled")

	// ErrInvalidQoS is returned when a QoS class name cannot be parsed
	ErrInvalidQoS = errors.New("invalid qos class")

	// ErrQueueConfig is returned when the queue configuration cannot be loaded
	ErrQueueConfig = errors.New("failed to load queue configuration")
)

// Contract violations. These indicate a programming error in the task
// implementation or queue usage and are raised as panics, not returned.
var (
	// ErrRunNotImplemented is the panic value when a task reaches execution
	// without a run hook
	ErrRunNotImplemented = errors.New("task run hook not implemented")

	// ErrConditionsNotEvaluable is the panic value when EvaluateConditions is
	// called outside the pending state or on a cancelled task
	ErrConditionsNotEvaluable = errors.New("conditions can only be evaluated in pending state on a non-cancelled task")

	// ErrNotReady is the panic value when a task is executed before it
	// reached the ready state
	ErrNotReady = errors.New("task must be ready to execute")

	// ErrCallbackAfterExecuting is the panic value when completion callbacks
	// are mutated once the task started executing
	ErrCallbackAfterExecuting = errors.New("completion callbacks cannot be modified once the task is executing")

	// ErrConfigureAfterEnqueue is the panic value when pre-enqueue builder
	// methods are called on a task that was already handed to a queue
	ErrConfigureAfterEnqueue = errors.New("task configuration cannot change after enqueue")
)

// InvalidTransitionError indicates an attempt to move a task between two
// lifecycle states the transition table does not allow. It is used as a
// panic value: disallowed transitions are contract violations, never
// silently applied.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid task state transition from '%s' to '%s'", e.From, e.To)
}

// IsInvalidTransitionError reports whether err is an InvalidTransitionError,
// typically after recovering a panic raised by a disallowed state change.
func IsInvalidTransitionError(err error) bool {
	var e *InvalidTransitionError
	return errors.As(err, &e)
}
