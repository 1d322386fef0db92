// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package projector is the activation engine. It owns a set of overlays,
// each with one or more timing windows, and fires begin/end transitions as
// playback time and named playback events arrive from a Host.
//
// All sweeps and event transitions run through a single dispatcher, so
// hooks always observe a consistent state. A call arriving while another
// transition is running (for example a hook that emits a playback event)
// is queued and executed by the goroutine already dispatching.
package projector

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/metrics"
	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/telemetry"
	"github.com/ManuGH/projector/internal/timing"
)

// Config tunes registration policy and observability.
type Config struct {
	// Strict rejects overlays whose windows fail timing.Check. The default
	// registers them anyway and logs them as degenerate.
	Strict bool
	// KnownEvents limits event boundaries to these names when non-empty.
	// The host's own playback events are always known.
	KnownEvents []string
	// OnHookError receives every isolated hook failure. It may be called
	// from the goroutine completing an asynchronous effect.
	OnHookError func(*HookError)

	Logger *zerolog.Logger
	Tracer trace.Tracer
}

type slot struct {
	index  int
	desc   timing.Descriptor
	active atomic.Bool
	held   atomic.Bool
}

type entry struct {
	id      string
	ov      overlay.Overlay
	el      *overlay.Element
	slots   []*slot
	cancels []func()
}

func (e *entry) anyActive() bool {
	for _, s := range e.slots {
		if s.active.Load() {
			return true
		}
	}
	return false
}

// Projector binds overlays to one host.
type Projector struct {
	host   Host
	cfg    Config
	known  map[string]struct{}
	logger zerolog.Logger
	tracer trace.Tracer

	mu         sync.RWMutex
	entries    []*entry
	byID       map[string]*entry
	cancelTick func()
	closed     bool

	qmu     sync.Mutex
	queue   []func()
	running bool
}

// New creates a projector bound to host and subscribes to its timeupdate
// event.
func New(host Host, cfg Config) (*Projector, error) {
	if host == nil {
		return nil, ErrInvalidHost
	}

	p := &Projector{
		host:   host,
		cfg:    cfg,
		byID:   make(map[string]*entry),
		tracer: cfg.Tracer,
	}
	if cfg.Logger != nil {
		p.logger = cfg.Logger.With().Str(xglog.FieldComponent, "projector").Logger()
	} else {
		p.logger = xglog.WithComponent("projector")
	}
	if p.tracer == nil {
		p.tracer = telemetry.Tracer(telemetry.InstrumentationName)
	}
	if len(cfg.KnownEvents) > 0 {
		p.known = make(map[string]struct{}, len(cfg.KnownEvents)+6)
		for _, name := range []string{EventTimeUpdate, EventSeeking, EventSeeked, EventPlay, EventPause, EventEnded} {
			p.known[name] = struct{}{}
		}
		for _, name := range cfg.KnownEvents {
			p.known[strings.TrimSpace(name)] = struct{}{}
		}
	}

	p.cancelTick = host.OnPlaybackEvent(EventTimeUpdate, p.Tick)
	return p, nil
}

// AddOverlay registers ov with the windows unwound from raws and mounts its
// element through the host.
func (p *Projector) AddOverlay(ov overlay.Overlay, raws ...timing.Raw) error {
	if ov == nil {
		return fmt.Errorf("%w: nil overlay", ErrInvalidOverlay)
	}
	el := ov.Render()
	if el == nil {
		return fmt.Errorf("%w: overlay has no renderable element", ErrInvalidOverlay)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	descs, err := p.checkTimings(el.ID(), raws)
	if err != nil {
		return err
	}

	if id := el.ID(); id != "" {
		if _, exists := p.byID[id]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateOverlay, id)
		}
	}
	if err := el.Attach(); err != nil {
		return err
	}
	if err := p.host.Mount(el); err != nil {
		el.Detach()
		return fmt.Errorf("mount overlay: %w", err)
	}

	n := len(p.entries) + 1
	id := el.EnsureID(func() string { return fmt.Sprintf("overlay-%d", n) })
	if _, exists := p.byID[id]; exists {
		_ = p.host.Unmount(el)
		el.Detach()
		return fmt.Errorf("%w: %q", ErrDuplicateOverlay, id)
	}

	e := &entry{id: id, ov: ov, el: el, slots: make([]*slot, len(descs))}
	for i, d := range descs {
		s := &slot{index: i, desc: d}
		e.slots[i] = s
		for _, name := range d.Events() {
			e.cancels = append(e.cancels, p.host.OnPlaybackEvent(name, p.eventHandler(e, s, name)))
		}
	}

	p.entries = append(p.entries, e)
	p.byID[id] = e
	metrics.AddMountedOverlays(1)

	p.logger.Debug().
		Str(xglog.FieldEvent, "projector.overlay_added").
		Str(xglog.FieldOverlayID, id).
		Int("windows", len(descs)).
		Msg("overlay registered")
	return nil
}

// checkTimings unwinds raws and applies the registration policy.
func (p *Projector) checkTimings(id string, raws []timing.Raw) ([]timing.Descriptor, error) {
	var problems []error
	for _, raw := range raws {
		if err := raw.Check(); err != nil {
			problems = append(problems, err)
		}
	}

	var known func(string) bool
	if p.known != nil {
		known = func(name string) bool {
			_, ok := p.known[name]
			return ok
		}
	}
	descs := timing.Unwind(raws)
	for _, d := range descs {
		if err := timing.Check(d, known); err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) == 0 {
		return descs, nil
	}
	if p.cfg.Strict {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTiming, errors.Join(problems...))
	}
	for _, err := range problems {
		p.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "timing.degenerate").
			Str(xglog.FieldOverlayID, id).
			Msg("timing window registered but may never open or close")
	}
	return descs, nil
}

// IsActive reports whether any window of the overlay is active.
func (p *Projector) IsActive(id string) bool {
	p.mu.RLock()
	e, ok := p.byID[id]
	p.mu.RUnlock()
	return ok && e.anyActive()
}

// Renderables returns the mounted elements, most recently added first.
func (p *Projector) Renderables() []*overlay.Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*overlay.Element, 0, len(p.entries))
	for i := len(p.entries) - 1; i >= 0; i-- {
		out = append(out, p.entries[i].el)
	}
	return out
}

// Len returns the number of registered overlays.
func (p *Projector) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Close removes every subscription, unmounts every element and drops all
// overlay state. Further registrations fail with ErrClosed; updates become
// no-ops.
func (p *Projector) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	entries := p.entries
	p.entries = nil
	p.byID = make(map[string]*entry)
	cancelTick := p.cancelTick
	p.cancelTick = nil
	p.mu.Unlock()

	if cancelTick != nil {
		cancelTick()
	}

	var errs []error
	for _, e := range entries {
		for _, cancel := range e.cancels {
			if cancel != nil {
				cancel()
			}
		}
		if err := p.host.Unmount(e.el); err != nil {
			errs = append(errs, fmt.Errorf("unmount overlay %q: %w", e.id, err))
		}
		e.el.Detach()
	}
	metrics.AddMountedOverlays(-len(entries))

	p.logger.Debug().
		Str(xglog.FieldEvent, "projector.closed").
		Int("overlays", len(entries)).
		Msg("projector closed")
	return errors.Join(errs...)
}

func (p *Projector) snapshotEntries() []*entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*entry(nil), p.entries...)
}
