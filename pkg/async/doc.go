// Package async provides simple, generic helpers for producing and awaiting
// the results of asynchronous operations.
//
// The package is centred around the generic type Future that represents the
// eventual result of an asynchronous operation. A Future is created
// unresolved with New and completed exactly once via Resolve; this
// promise-style split lets a producer (for example a task finishing on a
// worker goroutine) hand a waitable handle to any number of consumers.
// Consumers wait for completion with Await, block with a timeout using
// AwaitWithTimeout, or poll the state with IsComplete.
//
// For the common run-a-function case, Async starts the supplied function in
// its own goroutine and returns a Future resolved with its outcome. The
// helpers WaitAll and WaitAny coordinate multiple futures, either collecting
// every result or returning the first one to finish.
//
// # Usage
//
//	import (
//	    "context"
//	    "github.com/dmitrymomot/taskflow/pkg/async"
//	)
//
//	func main() {
//	    f := async.New[int]()
//
//	    go func() {
//	        // ... do work ...
//	        f.Resolve(42, nil)
//	    }()
//
//	    res, err := f.Await(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res)
//	}
//
// # Error Handling
//
// Await returns the error the producer resolved the future with, or the
// context error if the context expires first. AwaitWithTimeout returns
// ErrTimeout when the deadline passes before resolution.
package async
