// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/projector/internal/api"
	"github.com/ManuGH/projector/internal/config"
	"github.com/ManuGH/projector/internal/cuesheet"
	"github.com/ManuGH/projector/internal/daemon"
	"github.com/ManuGH/projector/internal/host"
	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/playbus"
	"github.com/ManuGH/projector/internal/telemetry"
	"github.com/ManuGH/projector/internal/version"
)

const serviceName = "projector"

func runDaemon(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("projector run", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	fs.StringVar(&file, "config", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: serviceName,
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	cfg, err := config.NewLoader(strings.TrimSpace(file), version.Version).Load()
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "config.load_failed").Msg("failed to load configuration")
		return 1
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: serviceName,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("projector stopped with error")
		return 1
	}
	logger.Info().Str(xglog.FieldEvent, "daemon.stopped").Msg("projector stopped")
	return 0
}

func run(ctx context.Context, cfg config.Config) error {
	logger := xglog.Derive(func(c *zerolog.Context) {
		*c = c.Str(xglog.FieldComponent, "daemon").Str("listen_addr", cfg.ListenAddr)
	})

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	player := host.NewPlayer()
	registry := cuesheet.NewRegistry()
	cuesheet.RegisterBuiltins(registry, player.Emit)

	apiCfg := api.Config{
		RateLimitRPS: cfg.RateLimit.RequestsPerSecond,
		Version:      cfg.Version,
	}
	if cfg.Tracing.Enabled {
		apiCfg.TracingService = serviceName
	}

	deps := daemon.Deps{
		Logger:     logger,
		Player:     player,
		Registry:   registry,
		API:        api.New(apiCfg, player, nil),
		Strict:     cfg.Strict,
		ListenAddr: cfg.ListenAddr,
	}

	var sheet *cuesheet.Sheet
	if cfg.CueSheet != "" {
		sheet, err = cuesheet.Load(cfg.CueSheet)
		if err != nil {
			return err
		}
		if err := sheet.Check(registry); err != nil {
			return fmt.Errorf("cue sheet %s: %w", cfg.CueSheet, err)
		}
		deps.Watcher = cuesheet.NewWatcher(cfg.CueSheet, registry, sheet)
	} else {
		logger.Warn().Str(xglog.FieldEvent, "cuesheet.none").Msg("no cue sheet configured, serving an empty stage")
	}

	if cfg.Playback.Simulate {
		deps.Clock = host.NewClock(player, cfg.Playback.TickInterval, cfg.Playback.Duration)
	}

	if cfg.Redis.Addr != "" {
		src, err := playbus.NewSource(playbus.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		}, player)
		if err != nil {
			return err
		}
		deps.Source = src
	}

	app, err := daemon.NewApp(deps)
	if err == nil && sheet != nil {
		err = app.Install(sheet)
	}
	if err != nil {
		if deps.Source != nil {
			_ = deps.Source.Close()
		}
		return err
	}
	return app.Run(ctx)
}
