// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/projector/internal/validate"
)

// Validate reports every problem with cfg at once.
func Validate(cfg Config) error {
	v := validate.New()

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil || cfg.LogLevel == "" {
		v.AddError("LogLevel", "unknown log level", cfg.LogLevel)
	}
	v.ListenAddr("ListenAddr", cfg.ListenAddr)

	if cfg.CueSheet != "" {
		v.File("CueSheet", cfg.CueSheet)
	}

	if cfg.Playback.TickInterval <= 0 {
		v.AddError("Playback.TickInterval", "must be positive", cfg.Playback.TickInterval)
	}
	if cfg.Playback.Duration < 0 {
		v.AddError("Playback.Duration", "cannot be negative", cfg.Playback.Duration)
	}

	if cfg.Redis.Addr != "" {
		v.HostPort("Redis.Addr", cfg.Redis.Addr)
		v.NotEmpty("Redis.Channel", cfg.Redis.Channel)
		v.Range("Redis.DB", cfg.Redis.DB, 0, 15)
	}

	v.Range("RateLimit.RequestsPerSecond", cfg.RateLimit.RequestsPerSecond, 0, 100000)

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("Tracing.SamplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	return v.Err()
}
