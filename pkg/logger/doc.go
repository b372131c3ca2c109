// Package logger provides a configurable factory for log/slog loggers with
// consistent formats and attribute helpers for the task domain.
//
// New builds a *slog.Logger from functional options: output format (json or
// text), level, static attributes, custom handler options, and context
// extractors that inject request- or task-scoped values into every record.
//
// # Usage
//
//	log := logger.New(
//		logger.WithProduction("taskflow"),
//		logger.WithAttr(slog.String("component", "queue")),
//	)
//	log.Info("queue started", logger.QoS("interactive"))
//
// WithDevelopment and WithProduction apply sensible preset defaults; the
// attr helpers (TaskID, TaskName, WorkerID, State, QoS, Error) keep attribute
// keys uniform across packages.
//
// WithFormat panics on unknown formats so misconfiguration fails at startup
// rather than at the first log call.
package logger
