// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the long-lived runtime: the projector bound to the
// playback host, cue sheet reloads, playback ingress and the HTTP server.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/projector/internal/api"
	"github.com/ManuGH/projector/internal/cuesheet"
	"github.com/ManuGH/projector/internal/host"
	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/playbus"
	"github.com/ManuGH/projector/internal/projector"
)

// DefaultShutdownTimeout bounds graceful HTTP shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Deps collects the components the app runs. Watcher, Clock and Source are
// optional.
type Deps struct {
	Logger   zerolog.Logger
	Player   *host.Player
	Registry *cuesheet.Registry
	API      *api.Server
	Watcher  *cuesheet.Watcher
	Clock    *host.Clock
	Source   *playbus.Source

	// Strict is passed to every projector built from a cue sheet.
	Strict bool

	ListenAddr string
	// Listener, when set, is used instead of ListenAddr.
	Listener        net.Listener
	ShutdownTimeout time.Duration
}

// App rebuilds the projector whenever the cue sheet changes and serves
// the HTTP API until its context is cancelled.
type App struct {
	deps         Deps
	logger       zerolog.Logger
	reloadSignal os.Signal

	mu    sync.Mutex
	proj  *projector.Projector
	sheet *cuesheet.Sheet
}

// NewApp validates deps and returns an app with no overlays installed.
func NewApp(deps Deps) (*App, error) {
	switch {
	case deps.Player == nil:
		return nil, ErrMissingPlayer
	case deps.Registry == nil:
		return nil, ErrMissingRegistry
	case deps.API == nil:
		return nil, ErrMissingAPIServer
	}
	if deps.ShutdownTimeout <= 0 {
		deps.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &App{
		deps:         deps,
		logger:       deps.Logger,
		reloadSignal: syscall.SIGHUP,
	}, nil
}

// Projector returns the projector serving the current cue sheet, or nil.
func (a *App) Projector() *projector.Projector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.proj
}

// Install replaces the running projector with one built from sheet. The
// old projector is closed first so its elements leave the stage. When the
// new sheet cannot be installed the previous sheet is restored.
func (a *App) Install(sheet *cuesheet.Sheet) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	prevSheet := a.sheet
	if a.proj != nil {
		if err := a.proj.Close(); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "daemon.projector_close_failed").Msg("closing previous projector")
		}
		a.proj = nil
		a.deps.API.SetEngine(nil)
	}

	err := a.installLocked(sheet)
	if err == nil {
		return nil
	}
	if prevSheet != nil {
		if restoreErr := a.installLocked(prevSheet); restoreErr != nil {
			return errors.Join(err, fmt.Errorf("restore previous cue sheet: %w", restoreErr))
		}
		a.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "daemon.cuesheet_restored").
			Msg("new cue sheet rejected, previous sheet restored")
	}
	return err
}

func (a *App) installLocked(sheet *cuesheet.Sheet) error {
	proj, err := projector.New(a.deps.Player, projector.Config{
		Strict:      a.deps.Strict,
		KnownEvents: sheet.Events,
	})
	if err != nil {
		return err
	}
	if err := sheet.Install(proj, a.deps.Registry); err != nil {
		_ = proj.Close()
		return fmt.Errorf("install cue sheet: %w", err)
	}

	a.proj = proj
	a.sheet = sheet
	a.deps.API.SetEngine(proj)

	// Open windows that already cover the current position.
	proj.Tick()

	a.logger.Info().
		Str(xglog.FieldEvent, "daemon.cuesheet_installed").
		Int("overlays", proj.Len()).
		Msg("cue sheet installed")
	return nil
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if c := a.deps.Clock; c != nil {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start playback clock: %w", err)
		}
		defer c.Stop()
		c.Play()
	}

	g, ctx := errgroup.WithContext(ctx)

	// Cue sheet watcher is best-effort: startup should not fail if it cannot be started.
	if w := a.deps.Watcher; w != nil {
		if err := w.Start(ctx); err != nil {
			a.logger.Warn().Err(err).Str(xglog.FieldEvent, "cuesheet.watcher_start_failed").Msg("failed to start cue sheet watcher")
		}
		defer w.Stop()

		sheets := make(chan *cuesheet.Sheet, 1)
		w.RegisterListener(sheets)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case sheet := <-sheets:
					if sheet == nil {
						continue
					}
					if err := a.Install(sheet); err != nil {
						a.logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.install_failed").Msg("reloaded cue sheet not installed")
					}
				}
			}
		})

		// SIGHUP trigger for manual reload.
		if a.reloadSignal != nil {
			g.Go(func() error {
				hupChan := make(chan os.Signal, 1)
				signal.Notify(hupChan, a.reloadSignal)
				defer signal.Stop(hupChan)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hupChan:
						a.logger.Info().
							Str(xglog.FieldEvent, "cuesheet.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading cue sheet")
						if err := w.Reload(ctx); err != nil {
							a.logger.Warn().Err(err).Str(xglog.FieldEvent, "cuesheet.reload_failed").Msg("cue sheet reload failed")
						}
					}
				}
			})
		}
	}

	if src := a.deps.Source; src != nil {
		defer func() { _ = src.Close() }()
		g.Go(func() error {
			if err := src.Run(ctx); err != nil {
				return fmt.Errorf("playback bus: %w", err)
			}
			return nil
		})
	}

	a.serve(ctx, g)

	err := g.Wait()

	a.mu.Lock()
	if a.proj != nil {
		err = errors.Join(err, a.proj.Close())
		a.proj = nil
	}
	a.mu.Unlock()
	return err
}

// serve runs the HTTP server in g and shuts it down when ctx is done.
func (a *App) serve(ctx context.Context, g *errgroup.Group) {
	srv := &http.Server{
		Addr:              a.deps.ListenAddr,
		Handler:           a.deps.API.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		var err error
		if a.deps.Listener != nil {
			a.logger.Info().Str("addr", a.deps.Listener.Addr().String()).Msg("API server listening (HTTP)")
			err = srv.Serve(a.deps.Listener)
		} else {
			a.logger.Info().Str("addr", srv.Addr).Msg("API server listening (HTTP)")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Str(xglog.FieldEvent, "api.server.failed").Msg("API server failed")
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		// Use a detached-but-bounded context so shutdown can complete even if parent is canceled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.deps.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown: %w", err)
		}
		a.logger.Info().Str(xglog.FieldEvent, "api.server.stopped").Msg("API server stopped")
		return nil
	})
}
