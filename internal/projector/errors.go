// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package projector

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHost      = errors.New("projector: host is required")
	ErrInvalidOverlay   = errors.New("projector: invalid overlay")
	ErrDuplicateOverlay = errors.New("projector: duplicate overlay id")
	ErrInvalidTiming    = errors.New("projector: invalid timing")
	ErrClosed           = errors.New("projector: closed")

	// ErrHookPanic wraps values recovered from a panicking hook or effect.
	ErrHookPanic = errors.New("hook panicked")
)

// HookError reports a failed lifecycle hook or overlay effect. The
// transition it belongs to still completes.
type HookError struct {
	OverlayID string
	// Window is the index of the timing window within its overlay.
	Window int
	Hook   string
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("overlay %q window %d: %s: %v", e.OverlayID, e.Window, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
