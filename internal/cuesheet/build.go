// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/projector"
	"github.com/ManuGH/projector/internal/timing"
)

// Entry is one overlay ready for Projector.AddOverlay.
type Entry struct {
	Overlay overlay.Overlay
	Timings []timing.Raw
}

// Raws resolves the hook names of one overlay's timings.
func (o OverlaySpec) Raws(reg *Registry) ([]timing.Raw, error) {
	raws := make([]timing.Raw, 0, len(o.Timings))
	var errs []error
	for i, ts := range o.Timings {
		hooks, err := ts.hooks(reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("timings[%d]: %w", i, err))
			continue
		}
		raws = append(raws, timing.Raw{
			Timing: strings.TrimSpace(ts.Timing),
			Start:  ts.Start.Boundary,
			End:    ts.End.Boundary,
			Hooks:  hooks,
		})
	}
	return raws, errors.Join(errs...)
}

func (ts TimingSpec) hooks(reg *Registry) (timing.Hooks, error) {
	var (
		hooks timing.Hooks
		errs  []error
	)
	for _, h := range []struct {
		name string
		dst  *timing.Hook
	}{
		{ts.BeforeBegin, &hooks.BeforeBegin},
		{ts.AfterBegin, &hooks.AfterBegin},
		{ts.BeforeEnd, &hooks.BeforeEnd},
		{ts.AfterEnd, &hooks.AfterEnd},
	} {
		fn, err := reg.Resolve(h.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*h.dst = fn
	}
	return hooks, errors.Join(errs...)
}

// Overlay builds the overlay declared by o.
func (o OverlaySpec) Overlay() (overlay.Overlay, error) {
	opts := overlay.Options{
		ID:       strings.TrimSpace(o.ID),
		Attrs:    o.Attrs,
		Position: o.Position,
		Cover:    o.Cover,
	}
	switch o.kind() {
	case TypeText:
		return overlay.NewText(o.Text, opts), nil
	case TypeMarkup:
		mk, err := overlay.NewMarkup(o.HTML, opts)
		if err != nil {
			return nil, err
		}
		return mk, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, o.Type)
	}
}

// Check resolves every hook name without building overlays.
func (s *Sheet) Check(reg *Registry) error {
	var errs []error
	for i, spec := range s.Overlays {
		if _, err := spec.Raws(reg); err != nil {
			errs = append(errs, fmt.Errorf("overlays[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Build materialises every overlay of the sheet.
func (s *Sheet) Build(reg *Registry) ([]Entry, error) {
	entries := make([]Entry, 0, len(s.Overlays))
	var errs []error
	for i, spec := range s.Overlays {
		raws, err := spec.Raws(reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("overlays[%d]: %w", i, err))
			continue
		}
		ov, err := spec.Overlay()
		if err != nil {
			errs = append(errs, fmt.Errorf("overlays[%d]: %w", i, err))
			continue
		}
		entries = append(entries, Entry{Overlay: ov, Timings: raws})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Install builds the sheet and registers every overlay on p, stopping at
// the first registration error.
func (s *Sheet) Install(p *projector.Projector, reg *Registry) error {
	entries, err := s.Build(reg)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if err := p.AddOverlay(e.Overlay, e.Timings...); err != nil {
			return fmt.Errorf("overlays[%d]: %w", i, err)
		}
	}
	return nil
}
