// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/timing"
)

// HookFactory builds a hook from the argument following "name:".
type HookFactory func(arg string) (timing.Hook, error)

// Registry maps hook names used in cue sheets to Go callbacks. A name is
// either registered exactly ("log") or as a factory prefix ("emit:<event>").
type Registry struct {
	mu        sync.RWMutex
	hooks     map[string]timing.Hook
	factories map[string]HookFactory
}

func NewRegistry() *Registry {
	return &Registry{
		hooks:     make(map[string]timing.Hook),
		factories: make(map[string]HookFactory),
	}
}

// Register binds name to hook, replacing any previous binding.
func (r *Registry) Register(name string, hook timing.Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = hook
}

// RegisterFactory binds a "prefix:arg" family of hooks.
func (r *Registry) RegisterFactory(prefix string, factory HookFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[prefix] = factory
}

// Resolve returns the hook for name. An empty name resolves to nil.
func (r *Registry) Resolve(name string) (timing.Hook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	r.mu.RLock()
	hook, ok := r.hooks[name]
	var factory HookFactory
	prefix, arg, hasArg := strings.Cut(name, ":")
	if !ok && hasArg {
		factory = r.factories[prefix]
	}
	r.mu.RUnlock()

	if ok {
		return hook, nil
	}
	if factory != nil {
		h, err := factory(arg)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", name, err)
		}
		return h, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHook, name)
}

// Names lists registered hook names; factories are listed as "prefix:".
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hooks)+len(r.factories))
	for name := range r.hooks {
		names = append(names, name)
	}
	for prefix := range r.factories {
		names = append(names, prefix+":")
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins adds the "log" hook and the "emit:<event>" factory.
// emit forwards the event name to the playback host, typically
// host.Player.Emit.
func RegisterBuiltins(r *Registry, emit func(name string)) {
	logger := xglog.WithComponent("cuesheet")
	r.Register("log", LogHook(logger))
	r.RegisterFactory("emit", func(arg string) (timing.Hook, error) {
		name := strings.TrimSpace(arg)
		if name == "" {
			return nil, fmt.Errorf("emit needs an event name")
		}
		if emit == nil {
			return nil, fmt.Errorf("no playback host to emit %q", name)
		}
		return func(overlay.Overlay, float64, bool) error {
			emit(name)
			return nil
		}, nil
	})
}

// LogHook returns a hook that logs the transition.
func LogHook(logger zerolog.Logger) timing.Hook {
	return func(ov overlay.Overlay, at float64, dirty bool) error {
		logger.Info().
			Str(xglog.FieldEvent, "cuesheet.hook").
			Str(xglog.FieldOverlayID, ov.Render().ID()).
			Float64(xglog.FieldPlaybackTime, at).
			Bool(xglog.FieldDirty, dirty).
			Msg("overlay transition")
		return nil
	}
}
