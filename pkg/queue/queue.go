package queue

import (
	"log/slog"

	"github.com/dmitrymomot/taskflow/pkg/logger"
)

// Scheduler is the external execution primitive a queue hands its tasks to.
// Implementations accept a job, repeatedly poll its readiness, execute it on
// some worker once IsReady reports true, and poll the executing/finished
// predicates to know when to reclaim the worker.
type Scheduler interface {
	Enqueue(job Job, qos QoS)
}

// Delegate is a queue-level listener notified when tasks are added,
// finished, or retried. The queue does not own its delegate; the reference
// is non-owning and the delegate may outlive or predecease the queue.
type Delegate interface {
	DidAdd(job Job, q *TaskQueue)
	DidFinish(job Job, q *TaskQueue)
	DidRetry(job Job, q *TaskQueue)
}

// RetryExhaustedDelegate is an optional Delegate extension notified when a
// failed task had no retry budget left. Without it the exhaustion is only
// logged.
type RetryExhaustedDelegate interface {
	DidExhaustRetries(job Job, q *TaskQueue)
}

// TaskQueue schedules tasks on an external Scheduler, tracks their
// lifecycle through observers, and orchestrates automatic retry.
type TaskQueue struct {
	scheduler Scheduler
	qos       QoS
	delegate  Delegate
	logger    *slog.Logger

	ownedPool *Pool
}

// NewTaskQueue creates a queue on top of the given scheduler.
func NewTaskQueue(scheduler Scheduler, opts ...Option) (*TaskQueue, error) {
	if scheduler == nil {
		return nil, ErrSchedulerNil
	}

	options := &queueOptions{
		qos:    QoSDefault,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &TaskQueue{
		scheduler: scheduler,
		qos:       options.qos,
		delegate:  options.delegate,
		logger:    options.logger,
	}, nil
}

// NewDefault builds a queue backed by its own started Pool at interactive
// QoS. It replaces the process-wide main queue of older designs: every call
// returns a fresh, explicitly owned instance with no hidden global state.
// Close releases the owned pool.
func NewDefault(opts ...Option) (*TaskQueue, error) {
	pool := NewPool()
	pool.Start()

	q, err := NewTaskQueue(pool, append([]Option{WithQoS(QoSUserInteractive)}, opts...)...)
	if err != nil {
		pool.Stop()
		return nil, err
	}
	q.ownedPool = pool
	return q, nil
}

// QoS returns the quality-of-service class this queue schedules with.
func (q *TaskQueue) QoS() QoS {
	return q.qos
}

// Close stops the pool owned by a queue built with NewDefault or
// NewFromConfig. Queues constructed over an external scheduler leave its
// lifecycle to the caller.
func (q *TaskQueue) Close() error {
	if q.ownedPool != nil {
		q.ownedPool.Stop()
	}
	return nil
}

// Add enqueues a task: lifecycle observers are attached, the task is handed
// to the scheduler, the delegate hears DidAdd, and the task transitions
// from initialized to pending. A task belongs to at most one queue.
func (q *TaskQueue) Add(task Job) error {
	if task == nil {
		return ErrNilTask
	}
	if err := task.markEnqueued(); err != nil {
		return err
	}

	task.AddObserver(&finishObserver{queue: q})
	if task.ShouldRetry() {
		task.AddObserver(&retryObserver{queue: q})
	}

	q.scheduler.Enqueue(task, q.qos)

	if q.delegate != nil {
		q.delegate.DidAdd(task, q)
	}

	task.willEnqueue()

	q.logger.Debug("task added",
		logger.TaskID(task.ID()),
		logger.TaskName(task.Name()),
		logger.QoS(q.qos.String()))

	return nil
}

// AddAll enqueues tasks in sequence order. The batch is not atomic: the
// first failure stops the loop and leaves earlier tasks enqueued.
func (q *TaskQueue) AddAll(tasks ...Job) error {
	for _, task := range tasks {
		if err := q.Add(task); err != nil {
			return err
		}
	}
	return nil
}

// retry consumes one retry attempt and re-enqueues the task. On an
// exhausted budget the retry is skipped: the exhaustion is logged, the
// optional RetryExhaustedDelegate hears about it, and the finish proceeds
// as terminal.
func (q *TaskQueue) retry(task Job) {
	if err := task.willRetry(); err != nil {
		q.logger.Warn("task retry skipped",
			logger.TaskID(task.ID()),
			logger.TaskName(task.Name()),
			logger.Error(err))
		if d, ok := q.delegate.(RetryExhaustedDelegate); ok {
			d.DidExhaustRetries(task, q)
		}
		return
	}

	q.scheduler.Enqueue(task, q.qos)
	task.willEnqueue()

	if q.delegate != nil {
		q.delegate.DidRetry(task, q)
	}

	q.logger.Debug("task requeued for retry",
		logger.TaskID(task.ID()),
		logger.TaskName(task.Name()),
		slog.Int("retries_left", task.RetryCount()))
}

// notifyFinish forwards a terminal finish to the delegate.
func (q *TaskQueue) notifyFinish(task Job) {
	if q.delegate != nil {
		q.delegate.DidFinish(task, q)
	}

	q.logger.Debug("task finished",
		logger.TaskID(task.ID()),
		logger.TaskName(task.Name()))
}
