// Package config provides a generic, cached loader for environment-based
// configuration structs.
//
// Configuration is described with plain structs tagged for
// github.com/caarlos0/env. Load parses the environment (after a one-time
// attempt to read a .env file via godotenv) into the given struct and caches
// the result per struct type, so repeated loads across the application are
// cheap and consistent.
//
// # Usage
//
//	type QueueConfig struct {
//		Workers int    `env:"TASKFLOW_WORKERS" envDefault:"4"`
//		QoS     string `env:"TASKFLOW_QOS" envDefault:"default"`
//	}
//
//	var cfg QueueConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// MustLoad panics on failure for configuration the process cannot start
// without. ResetCache exists for tests that change the environment between
// loads.
//
// # Error Handling
//
// Load returns sentinel errors (ErrNilPointer, ErrParsingConfig,
// ErrConfigNotLoaded) joined with the underlying parser error where
// applicable, checkable with errors.Is.
package config
