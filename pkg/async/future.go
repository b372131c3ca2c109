package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the eventual outcome of an asynchronous operation.
// A Future starts out unresolved and is completed exactly once via Resolve;
// all waiters observe the same result.
type Future[T any] struct {
	result T
	err    error
	once   sync.Once
	done   chan struct{}
}

// New creates an unresolved Future. The producer side completes it with
// Resolve while any number of consumers block on Await.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes the future with the given result and error.
// Only the first call takes effect; subsequent calls are ignored and
// return false.
func (f *Future[T]) Resolve(result T, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.result = result
		f.err = err
		resolved = true
		close(f.done)
	})
	return resolved
}

// Await blocks until the future is resolved or the context is done.
// If the context expires first, the context error is returned and the
// future remains unresolved for other waiters.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits for the future to resolve with a timeout.
// If the timeout occurs before completion, ErrTimeout is returned.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the future has been resolved, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async executes a function asynchronously and returns a Future resolved
// with its outcome. If the context is already cancelled the function is
// not invoked and the future resolves with the context error.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := New[U]()

	go func() {
		select {
		case <-ctx.Done():
			var zero U
			f.Resolve(zero, ctx.Err())
			return
		default:
		}

		res, err := fn(ctx, param)
		f.Resolve(res, err)
	}()

	return f
}

// WaitAll waits for all futures to resolve and returns their results in
// order, plus the first error encountered (remaining futures are still
// awaited so the result slice is fully populated).
func WaitAll[U any](ctx context.Context, futures ...*Future[U]) ([]U, error) {
	results := make([]U, len(futures))

	var firstErr error
	for i, future := range futures {
		result, err := future.Await(ctx)
		results[i] = result
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

// WaitAny waits for any of the futures to resolve and returns the index of
// the winner, its result, and its error.
// Note: this spawns one goroutine per future; all of them complete
// naturally when their respective futures resolve.
func WaitAny[U any](ctx context.Context, futures ...*Future[U]) (int, U, error) {
	if len(futures) == 0 {
		var zero U
		return -1, zero, ErrNoFutures
	}

	type outcome struct {
		index  int
		result U
		err    error
	}
	done := make(chan outcome, 1)

	for i, future := range futures {
		go func(index int, f *Future[U]) {
			result, err := f.Await(ctx)
			select {
			case done <- outcome{index, result, err}:
			default:
				// Another future already won the race.
			}
		}(i, future)
	}

	res := <-done
	return res.index, res.result, res.err
}
