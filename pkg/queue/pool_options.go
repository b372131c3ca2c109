package queue

import (
	"log/slog"
	"runtime"
	"time"
)

// PoolOption is a functional option for configuring a Pool
type PoolOption func(*poolOptions)

type poolOptions struct {
	workers      int
	pollInterval time.Duration
	logger       *slog.Logger
}

func defaultPoolOptions() *poolOptions {
	return &poolOptions{
		workers:      runtime.NumCPU(),
		pollInterval: 50 * time.Millisecond,
		logger:       slog.Default(),
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) PoolOption {
	return func(o *poolOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPollInterval sets the fallback interval at which the dispatcher
// re-polls job readiness between wake signals
func WithPollInterval(d time.Duration) PoolOption {
	return func(o *poolOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithPoolLogger sets the logger for the pool
func WithPoolLogger(l *slog.Logger) PoolOption {
	return func(o *poolOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
