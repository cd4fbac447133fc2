// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and MOMENTUM_ env vars.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory event queue across all shards.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of queue shards, one worker each.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication window.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxMatches caps the number of concurrently tracked matches.
	MaxMatches int `koanf:"max_matches"`

	// MaxForecastHorizon caps GET /matches/{id}/forecast?horizon.
	MaxForecastHorizon int `koanf:"max_forecast_horizon"`

	// RandomSeed seeds every match engine. Zero disables randomness.
	RandomSeed int64 `koanf:"random_seed"`

	// RedisAddr enables the stream publisher when non-empty.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// RedisStreamPrefix prefixes published stream names.
	RedisStreamPrefix string `koanf:"redis_stream_prefix"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		EventQueueSize:     50_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         200_000,
		MaxMatches:         1_000,
		MaxForecastHorizon: 30,
		RedisStreamPrefix:  "momentum",
	}
}
