// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package timing describes overlay activation windows and expands the
// shorthand range syntax ("1-10,45-60") into individual windows.
package timing

import (
	"github.com/ManuGH/projector/internal/overlay"
)

// Hook names as they appear in logs, metrics and errors.
const (
	HookBeforeBegin = "before_begin"
	HookAfterBegin  = "after_begin"
	HookBeforeEnd   = "before_end"
	HookAfterEnd    = "after_end"
)

// Hook is a lifecycle callback. It receives the owning overlay, the playback
// time that triggered the transition and the dirty (seek) flag.
type Hook func(ov overlay.Overlay, at float64, dirty bool) error

// Hooks is the set of optional callbacks attached to a window.
type Hooks struct {
	BeforeBegin Hook
	AfterBegin  Hook
	BeforeEnd   Hook
	AfterEnd    Hook
}

// Descriptor is a single activation window and its hooks.
type Descriptor struct {
	Start Boundary
	End   Boundary
	Hooks Hooks

	// Source is the shorthand pair this window was unwound from, empty for
	// explicit windows.
	Source string
}

// Opens reports whether an inactive window must begin at the given time.
func (d Descriptor) Opens(at float64) bool {
	if !d.Start.IsTime() || at < d.Start.Seconds() {
		return false
	}
	return !d.End.IsTime() || at <= d.End.Seconds()
}

// Closes reports whether an active window must end at the given time.
func (d Descriptor) Closes(at float64) bool {
	if d.Start.IsTime() && at < d.Start.Seconds() {
		return true
	}
	return d.End.IsTime() && at > d.End.Seconds()
}

// Events lists the distinct event names referenced by the window boundaries.
func (d Descriptor) Events() []string {
	var names []string
	if d.Start.IsEvent() {
		names = append(names, d.Start.Event())
	}
	if d.End.IsEvent() && (len(names) == 0 || names[0] != d.End.Event()) {
		names = append(names, d.End.Event())
	}
	return names
}

func (d Descriptor) String() string {
	return d.Start.String() + "-" + d.End.String()
}
