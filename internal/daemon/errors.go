// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingPlayer is returned when an app is created without a playback host.
	ErrMissingPlayer = errors.New("player is required")

	// ErrMissingRegistry is returned when an app is created without a hook registry.
	ErrMissingRegistry = errors.New("hook registry is required")

	// ErrMissingAPIServer is returned when an app is created without an HTTP surface.
	ErrMissingAPIServer = errors.New("API server is required")
)
