// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package projector

import "github.com/ManuGH/projector/internal/overlay"

// Playback event names delivered by host bindings.
const (
	EventTimeUpdate = "timeupdate"
	EventSeeking    = "seeking"
	EventSeeked     = "seeked"
	EventPlay       = "play"
	EventPause      = "pause"
	EventEnded      = "ended"
)

// Host is the playback binding a Projector runs against. It owns the
// playback position and the visual placement of mounted elements.
type Host interface {
	// CurrentTime returns the playback position in seconds. ok is false
	// while no position is known.
	CurrentTime() (seconds float64, ok bool)
	// Seeking reports whether a discontinuous jump is in progress.
	Seeking() bool
	// OnPlaybackEvent subscribes handler to a named playback event. The
	// returned function removes the subscription.
	OnPlaybackEvent(name string, handler func()) (cancel func())
	Mount(el *overlay.Element) error
	Unmount(el *overlay.Element) error
}
