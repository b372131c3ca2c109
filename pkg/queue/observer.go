package queue

// Observer is a task lifecycle listener. Observers are held in an
// insertion-ordered, append-only list on each task and are notified in
// registration order: TaskDidStart once if the task reaches execution,
// TaskDidFinish exactly once per lifecycle.
type Observer interface {
	TaskDidStart(job Job)
	TaskDidFinish(job Job)
}

// finishObserver bridges a task's terminal finish back to the queue
// delegate. A finish that is about to be retried is not terminal, so the
// delegate hears about each task once, after its last attempt.
type finishObserver struct {
	queue *TaskQueue
}

func (o *finishObserver) TaskDidStart(Job) {}

func (o *finishObserver) TaskDidFinish(job Job) {
	if job.failed() && job.ShouldRetry() && !job.IsCancelled() {
		// The retry observer will requeue this task.
		return
	}
	o.queue.notifyFinish(job)
}

// retryObserver triggers the queue's retry routine when a retry-eligible
// task finishes with a failure. It is registered after the finish observer,
// so within one finish event it always fires second.
type retryObserver struct {
	queue *TaskQueue
}

func (o *retryObserver) TaskDidStart(Job) {}

func (o *retryObserver) TaskDidFinish(job Job) {
	if !job.failed() || job.IsCancelled() {
		return
	}
	o.queue.retry(job)
}
