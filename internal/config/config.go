// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for projector.
package config

import "time"

// Config is the effective application configuration.
type Config struct {
	LogLevel   string `yaml:"logLevel,omitempty"`
	ListenAddr string `yaml:"listenAddr,omitempty"`
	// CueSheet is the path of the YAML overlay definitions.
	CueSheet string `yaml:"cueSheet,omitempty"`
	// Strict rejects cue sheet windows that could never open or close.
	Strict bool `yaml:"strict,omitempty"`

	Playback  PlaybackConfig  `yaml:"playback,omitempty"`
	Redis     RedisConfig     `yaml:"redis,omitempty"`
	RateLimit RateLimitConfig `yaml:"rateLimit,omitempty"`
	Tracing   TracingConfig   `yaml:"tracing,omitempty"`

	// Version is set from the binary, never from file or environment.
	Version string `yaml:"-"`
}

// PlaybackConfig controls the simulated clock used when no remote player
// drives the projector.
type PlaybackConfig struct {
	Simulate     bool          `yaml:"simulate,omitempty"`
	TickInterval time.Duration `yaml:"tickInterval,omitempty"`
	// Duration in seconds; 0 means the simulated timeline never ends.
	Duration float64 `yaml:"duration,omitempty"`
}

// RedisConfig enables playback ingress over Redis pub/sub when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Channel  string `yaml:"channel,omitempty"`
}

// RateLimitConfig limits playback ingress per client IP.
type RateLimitConfig struct {
	// RequestsPerSecond of 0 disables rate limiting.
	RequestsPerSecond int `yaml:"requestsPerSecond,omitempty"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled,omitempty"`
	Exporter     string  `yaml:"exporter,omitempty"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:   "info",
		ListenAddr: ":8088",
		Playback: PlaybackConfig{
			TickInterval: 250 * time.Millisecond,
		},
		Redis: RedisConfig{
			Channel: "projector:playback",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
		},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
