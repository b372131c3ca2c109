package queue

// State represents the lifecycle stage of a task. States are totally
// ordered: Initialized < Pending < Ready < Executing < Finished. The
// ordering is used for precondition checks such as "callbacks may only be
// attached before the task executes".
type State int8

const (
	// StateInitialized is the state of a freshly constructed task.
	StateInitialized State = iota
	// StatePending means the task was handed to a queue and waits for its
	// conditions to be evaluated.
	StatePending
	// StateReady means the task can be picked up by a worker.
	StateReady
	// StateExecuting means the task currently occupies a worker.
	StateExecuting
	// StateFinished is the terminal state of a lifecycle; a retry resets it
	// back to StateInitialized.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// canTransition is the pure transition-validity function of the task state
// machine:
//
//   - single-step forward progression is always legal
//   - any state may move to StateFinished when the task is cancelled
//   - StateFinished may move back to StateInitialized only when a retry is
//     pending
//
// Every other combination is a contract violation.
func (s State) canTransition(target State, shouldRetry, cancelled bool) bool {
	if cancelled && target == StateFinished {
		return true
	}

	switch {
	case s == StateInitialized && target == StatePending:
		return true
	case s == StatePending && target == StateReady:
		return true
	case s == StateReady && target == StateExecuting:
		return true
	case s == StateExecuting && target == StateFinished:
		return true
	case s == StateFinished && target == StateInitialized && shouldRetry:
		return true
	}
	return false
}
