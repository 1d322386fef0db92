// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timing

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies a window boundary.
type Kind uint8

const (
	// KindUnset marks an absent boundary. An unset end is open-ended; an unset
	// start never opens by time.
	KindUnset Kind = iota
	// KindTime is a playback position in seconds.
	KindTime
	// KindEvent is a named playback event.
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindTime:
		return "time"
	case KindEvent:
		return "event"
	default:
		return "unset"
	}
}

// Boundary is one edge of an activation window: a timestamp or an event
// name, never both.
type Boundary struct {
	kind  Kind
	at    float64
	event string
}

// At returns a time boundary. Non-finite values yield an unset boundary.
func At(seconds float64) Boundary {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Boundary{}
	}
	return Boundary{kind: KindTime, at: seconds}
}

// On returns an event boundary. An empty name yields an unset boundary.
func On(event string) Boundary {
	event = strings.TrimSpace(event)
	if event == "" {
		return Boundary{}
	}
	return Boundary{kind: KindEvent, event: event}
}

// Parse classifies a raw token: empty is unset, a finite number is a time,
// anything else names an event.
func Parse(token string) Boundary {
	token = strings.TrimSpace(token)
	if token == "" {
		return Boundary{}
	}
	if v, err := strconv.ParseFloat(token, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Boundary{kind: KindTime, at: v}
	}
	return Boundary{kind: KindEvent, event: token}
}

func (b Boundary) Kind() Kind       { return b.kind }
func (b Boundary) IsSet() bool      { return b.kind != KindUnset }
func (b Boundary) IsTime() bool     { return b.kind == KindTime }
func (b Boundary) IsEvent() bool    { return b.kind == KindEvent }
func (b Boundary) Seconds() float64 { return b.at }
func (b Boundary) Event() string    { return b.event }

// String renders the boundary back into token form.
func (b Boundary) String() string {
	switch b.kind {
	case KindTime:
		return strconv.FormatFloat(b.at, 'f', -1, 64)
	case KindEvent:
		return b.event
	default:
		return ""
	}
}
