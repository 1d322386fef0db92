// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cuesheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/projector/internal/timing"
)

// Unwound returns a copy of s with every shorthand timing expanded into
// explicit start/end windows. Hook names are repeated on each window.
// Malformed pairs stay in shorthand form so policy checks still see them.
func Unwound(s *Sheet) *Sheet {
	out := &Sheet{
		Version:  s.Version,
		Events:   append([]string(nil), s.Events...),
		Overlays: make([]OverlaySpec, 0, len(s.Overlays)),
	}
	for _, spec := range s.Overlays {
		expanded := spec
		expanded.Timings = make([]TimingSpec, 0, len(spec.Timings))
		for _, ts := range spec.Timings {
			if ts.Timing == "" {
				expanded.Timings = append(expanded.Timings, ts)
				continue
			}
			for _, d := range timing.Unwind([]timing.Raw{{Timing: ts.Timing}}) {
				w := ts
				w.Timing = ""
				if errors.Is(timing.Check(d, nil), timing.ErrMalformedRange) {
					w.Timing = d.Source
				} else {
					w.Start = TokenOf(d.Start)
					w.End = TokenOf(d.End)
				}
				expanded.Timings = append(expanded.Timings, w)
			}
		}
		out.Overlays = append(out.Overlays, expanded)
	}
	return out
}

// Encode writes s as YAML.
func Encode(w io.Writer, s *Sheet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode cue sheet: %w", err)
	}
	return enc.Close()
}

// WriteUnwound atomically replaces path with the unwound form of s.
func WriteUnwound(path string, s *Sheet) (err error) {
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending cue sheet: %w", err)
	}
	defer func() {
		// no-op once the file has been committed
		if cerr := pendingFile.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("cleanup pending cue sheet: %w", cerr)
		}
	}()

	if err := Encode(pendingFile, Unwound(s)); err != nil {
		return err
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace cue sheet: %w", err)
	}
	return nil
}
