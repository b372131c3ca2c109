package queue

import (
	"errors"
	"time"

	"github.com/dmitrymomot/taskflow/pkg/config"
)

// Config holds the environment-driven configuration for a pool-backed queue
type Config struct {
	Workers         int           `env:"TASKFLOW_WORKERS" envDefault:"4"`
	QoS             string        `env:"TASKFLOW_QOS" envDefault:"default"`
	PollInterval    time.Duration `env:"TASKFLOW_POLL_INTERVAL" envDefault:"50ms"`
	ShutdownTimeout time.Duration `env:"TASKFLOW_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// LoadConfig loads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(ErrQueueConfig, err)
	}
	return cfg, nil
}

// NewFromConfig builds a queue backed by its own started Pool, sized and
// classed per cfg. Close releases the pool.
func NewFromConfig(cfg Config, opts ...Option) (*TaskQueue, error) {
	qos, err := ParseQoS(cfg.QoS)
	if err != nil {
		return nil, err
	}

	pool := NewPool(
		WithWorkers(cfg.Workers),
		WithPollInterval(cfg.PollInterval),
	)
	pool.Start()

	q, err := NewTaskQueue(pool, append([]Option{WithQoS(qos)}, opts...)...)
	if err != nil {
		pool.Stop()
		return nil, err
	}
	q.ownedPool = pool
	return q, nil
}
