// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/metrics"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher holds the current cue sheet and reloads it when the file changes.
// A failed reload keeps the previous sheet.
type Watcher struct {
	path     string
	registry *Registry
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.RWMutex
	current *Sheet

	listenersMu sync.RWMutex
	listeners   []chan<- *Sheet

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates a watcher for path starting from initial.
func NewWatcher(path string, registry *Registry, initial *Sheet) *Watcher {
	return &Watcher{
		path:     path,
		registry: registry,
		debounce: DefaultDebounce,
		logger:   xglog.WithComponent("cuesheet"),
		current:  initial,
	}
}

// Current returns the last successfully loaded sheet.
func (w *Watcher) Current() *Sheet {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Reload loads the file, resolves its hooks and swaps it in.
func (w *Watcher) Reload(_ context.Context) error {
	w.logger.Info().Str(xglog.FieldEvent, "cuesheet.reload_start").Str(xglog.FieldPath, w.path).Msg("reloading cue sheet")

	sheet, err := Load(w.path)
	if err == nil {
		err = sheet.Check(w.registry)
	}
	if err != nil {
		metrics.IncCueSheetReload("failure")
		w.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "cuesheet.reload_failed").
			Str(xglog.FieldPath, w.path).
			Msg("keeping previous cue sheet")
		return fmt.Errorf("reload cue sheet: %w", err)
	}

	w.mu.Lock()
	w.current = sheet
	w.mu.Unlock()

	w.notifyListeners(sheet)
	metrics.IncCueSheetReload("success")
	w.logger.Info().
		Str(xglog.FieldEvent, "cuesheet.reload_success").
		Int("overlays", len(sheet.Overlays)).
		Msg("cue sheet reloaded")
	return nil
}

// Start watches the file until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if _, err := os.Stat(w.path); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch cue sheet: %w", err)
	}
	// Atomic replaces swap the inode, so the directory is watched instead.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch cue sheet: %w", err)
	}

	w.fsw = fsw
	w.done = make(chan struct{})

	w.logger.Info().
		Str(xglog.FieldEvent, "cuesheet.watcher_started").
		Str(xglog.FieldPath, w.path).
		Msg("watching cue sheet for changes")

	go w.watchLoop(ctx)
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.done)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = w.fsw.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str(xglog.FieldEvent, "cuesheet.watcher_stopped").Msg("cue sheet watcher stopped")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			// Write covers in-place edits, Create covers renames onto the path.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug().
					Str(xglog.FieldEvent, "cuesheet.file_changed").
					Str("op", event.Op.String()).
					Msg("cue sheet changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, func() {
					_ = w.Reload(ctx)
				})
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "cuesheet.watcher_error").
				Msg("cue sheet watcher error")
		}
	}
}

// Stop closes the file watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	if w.fsw == nil {
		return
	}
	_ = w.fsw.Close()
	<-w.done
}

// RegisterListener registers a channel receiving every reloaded sheet.
// Sends never block; a full channel misses the update.
func (w *Watcher) RegisterListener(ch chan<- *Sheet) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	w.listeners = append(w.listeners, ch)
}

func (w *Watcher) notifyListeners(sheet *Sheet) {
	w.listenersMu.RLock()
	defer w.listenersMu.RUnlock()

	for _, ch := range w.listeners {
		select {
		case ch <- sheet:
		default:
			w.logger.Warn().
				Str(xglog.FieldEvent, "cuesheet.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}
