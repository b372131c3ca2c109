package queue

// Result is the outcome of a task: either a success value or an error.
// Exactly one variant is active and a Result is immutable once constructed.
type Result[T any] struct {
	value T
	err   error
}

// NewValue creates a success result carrying v.
func NewValue[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// NewError creates a failure result carrying err. The error must be non-nil;
// a nil error would make the result indistinguishable from a zero-valued
// success.
func NewError[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Value returns the success value and true when the result is the success
// variant.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Err returns the failure error, or nil for the success variant.
func (r Result[T]) Err() error {
	return r.err
}

// IsError reports whether the failure variant is active.
func (r Result[T]) IsError() bool {
	return r.err != nil
}
