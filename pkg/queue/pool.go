package queue

import (
	"context"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/taskflow/pkg/logger"
)

// Pool is the default in-process Scheduler: a fixed set of worker
// goroutines executing ready tasks pulled from three QoS buckets, scanned
// interactive first. A single dispatcher goroutine polls job readiness; it
// is woken by the tasks' state-change signal and additionally re-polls on a
// short interval so readiness driven by external events (for example a
// dependency finishing on another pool) is never missed.
type Pool struct {
	workers      int
	pollInterval time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	buckets [3][]Job

	signal   chan struct{}
	dispatch chan Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	runMu   sync.Mutex
	running bool
}

// NewPool creates a stopped pool. Call Start before adding tasks through a
// queue; Enqueue before Start only buffers the job.
func NewPool(opts ...PoolOption) *Pool {
	options := defaultPoolOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Pool{
		workers:      options.workers,
		pollInterval: options.pollInterval,
		logger:       options.logger,
		signal:       make(chan struct{}, 1),
	}
}

// Enqueue accepts a job for execution under the given QoS class and binds
// the pool's wake signal to the job's state changes. Called by TaskQueue;
// re-enqueueing the same job after a retry reset is expected.
func (p *Pool) Enqueue(job Job, qos QoS) {
	job.bindSignal(p.wake)

	if !qos.Valid() {
		qos = QoSDefault
	}
	idx := int(QoSUserInteractive - qos)

	p.mu.Lock()
	p.buckets[idx] = append(p.buckets[idx], job)
	p.mu.Unlock()

	p.wake()
}

// Start launches the dispatcher and worker goroutines. Starting a running
// pool is a no-op.
func (p *Pool) Start() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.running {
		return
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.dispatch = make(chan Job)
	p.running = true

	p.wg.Add(1)
	go p.dispatcherLoop()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info("pool started", slog.Int("workers", p.workers))
}

// Stop shuts the pool down: no more jobs are dispatched, in-flight tasks
// run to completion (execution is never preempted), and queued jobs that
// were not yet dispatched are dropped.
func (p *Pool) Stop() {
	p.runMu.Lock()
	running := p.running
	p.running = false
	cancel := p.cancel
	p.runMu.Unlock()

	if running {
		cancel()
		p.wg.Wait()
	}

	// Undispatched jobs are dropped whether or not the pool ever started.
	p.mu.Lock()
	dropped := 0
	for i := range p.buckets {
		dropped += len(p.buckets[i])
		p.buckets[i] = nil
	}
	p.mu.Unlock()

	if dropped > 0 {
		p.logger.Warn("pool stopped with undispatched tasks", slog.Int("dropped", dropped))
	} else if running {
		p.logger.Info("pool stopped")
	}
}

// WorkerCount returns the number of worker goroutines.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// QueuedCount returns the number of jobs waiting to be dispatched.
func (p *Pool) QueuedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := range p.buckets {
		n += len(p.buckets[i])
	}
	return n
}

// wake pings the dispatcher without blocking. A full signal channel means a
// wake-up is already pending, which is enough.
func (p *Pool) wake() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// dispatcherLoop hands ready jobs to workers, then sleeps until a state
// change signal, the poll interval, or shutdown.
func (p *Pool) dispatcherLoop() {
	defer p.wg.Done()
	defer close(p.dispatch)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		for {
			job, ok := p.nextReady()
			if !ok {
				break
			}
			select {
			case p.dispatch <- job:
			case <-p.ctx.Done():
				return
			}
		}

		select {
		case <-p.signal:
		case <-ticker.C:
		case <-p.ctx.Done():
			return
		}
	}
}

// nextReady scans the buckets from interactive down to background and
// returns the first ready job, removing it from its bucket. Jobs already
// finished are reclaimed during the scan.
func (p *Pool) nextReady() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.buckets {
		bucket := p.buckets[i]
		for j := 0; j < len(bucket); {
			job := bucket[j]
			if job.IsFinished() {
				bucket = slices.Delete(bucket, j, j+1)
				continue
			}
			if job.IsReady() {
				p.buckets[i] = slices.Delete(bucket, j, j+1)
				return job, true
			}
			j++
		}
		p.buckets[i] = bucket
	}
	return nil, false
}

// worker executes dispatched jobs until the dispatch channel closes.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.dispatch {
		p.runJob(id, job)
	}
}

// runJob executes one job with panic isolation so a poisoned task cannot
// take down unrelated work. The panic, including contract violations raised
// by the task itself, is reported with its stack trace.
func (p *Pool) runJob(workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				logger.WorkerID(workerID),
				logger.TaskID(job.ID()),
				logger.TaskName(job.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	job.Start()
}
