package queue

import "log/slog"

// Option is a functional option for configuring a TaskQueue
type Option func(*queueOptions)

type queueOptions struct {
	qos      QoS
	delegate Delegate
	logger   *slog.Logger
}

// WithQoS sets the quality-of-service class the queue schedules with
func WithQoS(qos QoS) Option {
	return func(o *queueOptions) {
		if qos.Valid() {
			o.qos = qos
		}
	}
}

// WithDelegate sets the queue delegate. The queue holds a non-owning
// reference; passing nil keeps the queue silent.
func WithDelegate(d Delegate) Option {
	return func(o *queueOptions) {
		o.delegate = d
	}
}

// WithLogger sets the logger for the queue
func WithLogger(l *slog.Logger) Option {
	return func(o *queueOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
