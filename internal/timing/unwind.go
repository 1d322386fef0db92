// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package timing

import "strings"

// Raw is a window as configured: either a shorthand Timing string or an
// explicit Start/End pair, plus one hook set.
type Raw struct {
	Timing string
	Start  Boundary
	End    Boundary
	Hooks  Hooks
}

// Unwind expands shorthand entries into one descriptor per range and passes
// explicit entries through in place. Shorthand ranges share the entry's
// hooks. Malformed ranges are still emitted; see Check.
func Unwind(raws []Raw) []Descriptor {
	out := make([]Descriptor, 0, len(raws))
	for _, raw := range raws {
		if raw.Timing == "" {
			out = append(out, Descriptor{Start: raw.Start, End: raw.End, Hooks: raw.Hooks})
			continue
		}
		for _, pair := range strings.Split(raw.Timing, ",") {
			start, end, _ := strings.Cut(pair, "-")
			out = append(out, Descriptor{
				Start:  Parse(start),
				End:    Parse(end),
				Hooks:  raw.Hooks,
				Source: strings.TrimSpace(pair),
			})
		}
	}
	return out
}

// Shorthand renders descriptors back into the comma separated range form.
func Shorthand(descs []Descriptor) string {
	parts := make([]string, 0, len(descs))
	for _, d := range descs {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ",")
}
