// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package projector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/metrics"
	"github.com/ManuGH/projector/internal/telemetry"
	"github.com/ManuGH/projector/internal/timing"
)

// Effect names reported in HookError.Hook when an overlay effect panics.
const (
	EffectBegin = "begin_effect"
	EffectEnd   = "end_effect"
)

// pass counts what one dispatched task did. Failures may be added late by
// asynchronous effect completions.
type pass struct {
	transitions int
	failures    atomic.Int64
}

// Update evaluates every window against playback time at. Windows are
// visited in declaration order. dirty is passed to hooks unchanged.
//
// When another goroutine is already dispatching, the sweep is queued and
// Update returns before it runs; the running dispatcher executes it.
func (p *Projector) Update(at float64, dirty bool) {
	p.dispatch(func() { p.sweep(at, dirty) })
}

// Tick reads the current time and seeking flag from the host and sweeps.
// The host is read when the tick runs, not when it is queued. Ticks without
// a known playback position are ignored. Like Update, Tick may return before
// its sweep runs.
func (p *Projector) Tick() {
	p.dispatch(func() {
		at, ok := p.host.CurrentTime()
		if !ok {
			p.logger.Trace().Str(xglog.FieldEvent, "projector.tick_skipped").Msg("no playback position")
			return
		}
		p.sweep(at, p.host.Seeking())
	})
}

// dispatch runs fn to completion before any other queued task. Calls made
// while a task is running only enqueue.
func (p *Projector) dispatch(fn func()) {
	p.qmu.Lock()
	p.queue = append(p.queue, fn)
	if p.running {
		p.qmu.Unlock()
		return
	}
	p.running = true
	for len(p.queue) > 0 {
		next := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.qmu.Unlock()
		p.run(next)
		p.qmu.Lock()
	}
	p.queue = nil
	p.running = false
	p.qmu.Unlock()
}

func (p *Projector) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str(xglog.FieldEvent, "projector.dispatch_panic").
				Interface("panic", r).
				Msg("dispatched task panicked")
		}
	}()
	fn()
}

func (p *Projector) sweep(at float64, dirty bool) {
	entries := p.snapshotEntries()
	if len(entries) == 0 {
		return
	}

	started := time.Now()
	_, span := p.tracer.Start(context.Background(), "projector.sweep")
	span.SetAttributes(telemetry.SweepAttributes(at, dirty, len(entries))...)

	var ps pass
	for _, e := range entries {
		// Close may run from a hook or another goroutine mid-sweep.
		if p.detached(e) {
			continue
		}
		for _, s := range e.slots {
			// A window closed by its end event stays closed until playback
			// rewinds before its start.
			if s.held.Load() && at < s.desc.Start.Seconds() {
				s.held.Store(false)
			}
			switch {
			case !s.active.Load() && !s.held.Load() && s.desc.Opens(at):
				p.begin(e, s, at, dirty, metrics.TriggerTime, &ps)
			case s.active.Load() && s.desc.Closes(at):
				p.end(e, s, at, dirty, metrics.TriggerTime, &ps)
			}
		}
	}

	span.SetAttributes(telemetry.ResultAttributes(ps.transitions, int(ps.failures.Load()))...)
	span.End()
	metrics.ObserveSweep(time.Since(started))
}

// eventHandler returns the host subscription for one event boundary of s.
// A start event opens an inactive window, an end event closes an active
// one. When both boundaries name the same event the window toggles.
func (p *Projector) eventHandler(e *entry, s *slot, name string) func() {
	return func() {
		p.dispatch(func() {
			if p.detached(e) {
				return
			}
			opens := s.desc.Start.IsEvent() && s.desc.Start.Event() == name && !s.active.Load()
			closes := s.desc.End.IsEvent() && s.desc.End.Event() == name && s.active.Load()
			if !opens && !closes {
				return
			}

			at, ok := p.host.CurrentTime()
			if !ok {
				at = 0
			}
			dirty := p.host.Seeking()

			_, span := p.tracer.Start(context.Background(), "projector.event")
			span.SetAttributes(telemetry.EventAttributes(name, e.id)...)
			span.SetAttributes(attribute.Float64(telemetry.PlaybackTimeKey, at))

			var ps pass
			if opens {
				p.begin(e, s, at, dirty, metrics.TriggerEvent, &ps)
			} else {
				p.end(e, s, at, dirty, metrics.TriggerEvent, &ps)
				s.held.Store(s.desc.Start.IsTime())
			}

			span.SetAttributes(telemetry.ResultAttributes(ps.transitions, int(ps.failures.Load()))...)
			span.End()
		})
	}
}

func (p *Projector) detached(e *entry) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byID[e.id] != e
}

// begin runs BeforeBegin, then the overlay's Begin effect whose completion
// runs AfterBegin, then marks the window active.
func (p *Projector) begin(e *entry, s *slot, at float64, dirty bool, trigger string, ps *pass) {
	hooks := s.desc.Hooks
	p.callHook(e, s, timing.HookBeforeBegin, hooks.BeforeBegin, at, dirty, ps)
	p.runEffect(e, s, EffectBegin, func(done func()) { e.ov.Begin(dirty, done) },
		func() { p.callHook(e, s, timing.HookAfterBegin, hooks.AfterBegin, at, dirty, ps) }, ps)
	s.active.Store(true)

	ps.transitions++
	metrics.IncTransition(metrics.DirectionBegin, trigger)
	p.logTransition("projector.begin", e, s, at, dirty, trigger)
}

// end mirrors begin with the End hooks and effect.
func (p *Projector) end(e *entry, s *slot, at float64, dirty bool, trigger string, ps *pass) {
	hooks := s.desc.Hooks
	p.callHook(e, s, timing.HookBeforeEnd, hooks.BeforeEnd, at, dirty, ps)
	p.runEffect(e, s, EffectEnd, func(done func()) { e.ov.End(dirty, done) },
		func() { p.callHook(e, s, timing.HookAfterEnd, hooks.AfterEnd, at, dirty, ps) }, ps)
	s.active.Store(false)

	ps.transitions++
	metrics.IncTransition(metrics.DirectionEnd, trigger)
	p.logTransition("projector.end", e, s, at, dirty, trigger)
}

// runEffect starts an overlay effect. after runs at most once, when the
// effect reports completion. A panicking effect is reported and after runs
// immediately.
func (p *Projector) runEffect(e *entry, s *slot, name string, effect func(done func()), after func(), ps *pass) {
	var once sync.Once
	done := func() { once.Do(after) }

	panicked := func() (failed bool) {
		defer func() {
			if r := recover(); r != nil {
				p.reportFailure(e, s, name, fmt.Errorf("%w: %v", ErrHookPanic, r), ps)
				failed = true
			}
		}()
		effect(done)
		return false
	}()
	if panicked {
		done()
	}
}

// callHook invokes an optional hook, isolating errors and panics.
func (p *Projector) callHook(e *entry, s *slot, name string, hook timing.Hook, at float64, dirty bool, ps *pass) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.reportFailure(e, s, name, fmt.Errorf("%w: %v", ErrHookPanic, r), ps)
		}
	}()
	if err := hook(e.ov, at, dirty); err != nil {
		p.reportFailure(e, s, name, err, ps)
	}
}

func (p *Projector) reportFailure(e *entry, s *slot, name string, err error, ps *pass) {
	ps.failures.Add(1)
	metrics.IncHookFailure(name)

	herr := &HookError{OverlayID: e.id, Window: s.index, Hook: name, Err: err}
	p.logger.Error().
		Err(err).
		Str(xglog.FieldEvent, "projector.hook_failed").
		Str(xglog.FieldOverlayID, e.id).
		Int(xglog.FieldWindow, s.index).
		Str(xglog.FieldHook, name).
		Msg("lifecycle hook failed")

	if p.cfg.OnHookError != nil {
		p.cfg.OnHookError(herr)
	}
}

func (p *Projector) logTransition(event string, e *entry, s *slot, at float64, dirty bool, trigger string) {
	p.logger.Debug().
		Str(xglog.FieldEvent, event).
		Str(xglog.FieldOverlayID, e.id).
		Int(xglog.FieldWindow, s.index).
		Float64(xglog.FieldPlaybackTime, at).
		Bool(xglog.FieldDirty, dirty).
		Str(xglog.FieldTrigger, trigger).
		Msg("window transition")
}
