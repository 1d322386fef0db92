// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	PlaybackTimeKey    = "playback.time"
	PlaybackDirtyKey   = "playback.dirty"
	PlaybackEventKey   = "playback.event"
	OverlayCountKey    = "overlay.count"
	OverlayIDKey       = "overlay.id"
	TransitionCountKey = "transition.count"
	HookFailureKey     = "hook.failures"
)

// SweepAttributes creates attributes describing one update sweep.
func SweepAttributes(at float64, dirty bool, overlays int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(PlaybackTimeKey, at),
		attribute.Bool(PlaybackDirtyKey, dirty),
		attribute.Int(OverlayCountKey, overlays),
	}
}

// EventAttributes creates attributes for an event-driven transition.
func EventAttributes(event, overlayID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if event != "" {
		attrs = append(attrs, attribute.String(PlaybackEventKey, event))
	}
	if overlayID != "" {
		attrs = append(attrs, attribute.String(OverlayIDKey, overlayID))
	}
	return attrs
}

// ResultAttributes summarises what a sweep or event dispatch did.
func ResultAttributes(transitions, failures int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(TransitionCountKey, transitions),
		attribute.Int(HookFailureKey, failures),
	}
}
