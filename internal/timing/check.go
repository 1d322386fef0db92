// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRange marks a shorthand pair without "-" or a window without a start.
	ErrMalformedRange = errors.New("malformed range")
	// ErrReversedRange marks a time window whose end precedes its start.
	ErrReversedRange = errors.New("reversed range")
	// ErrUnknownEvent marks an event boundary outside the known event set.
	ErrUnknownEvent = errors.New("unknown playback event")
	// ErrAmbiguousTiming marks a raw entry carrying both shorthand and explicit boundaries.
	ErrAmbiguousTiming = errors.New("timing shorthand and explicit boundaries are mutually exclusive")
)

// Check reports the first problem with a raw entry. The shorthand wins when
// both forms are present.
func (r Raw) Check() error {
	if r.Timing != "" && (r.Start.IsSet() || r.End.IsSet()) {
		return fmt.Errorf("%w: timing %q", ErrAmbiguousTiming, r.Timing)
	}
	return nil
}

// Check reports why a window would never open or never close by the usual
// rules. known, when non-nil, decides which event names are recognised.
// A nil error means the window is well formed.
func Check(d Descriptor, known func(string) bool) error {
	if d.Source != "" && !strings.Contains(d.Source, "-") {
		return fmt.Errorf("%w: %q has no end separator", ErrMalformedRange, d.Source)
	}
	if !d.Start.IsSet() {
		return fmt.Errorf("%w: window %q has no start", ErrMalformedRange, d.String())
	}
	if d.Start.IsTime() && d.End.IsTime() && d.End.Seconds() < d.Start.Seconds() {
		return fmt.Errorf("%w: %q", ErrReversedRange, d.String())
	}
	if known != nil {
		for _, name := range d.Events() {
			if !known(name) {
				return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
			}
		}
	}
	return nil
}
