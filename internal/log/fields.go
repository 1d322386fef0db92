// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldOverlayID = "overlay_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Timing fields
	FieldPlaybackTime  = "playback_time"
	FieldDirty         = "dirty"
	FieldWindow        = "window"
	FieldHook          = "hook"
	FieldTrigger       = "trigger"
	FieldPlaybackEvent = "playback_event"

	// Path fields
	FieldPath = "path"
)
