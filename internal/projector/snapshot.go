// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package projector

// OverlayState is a point-in-time view of one overlay.
type OverlayState struct {
	ID      string        `json:"id"`
	Kind    string        `json:"kind"`
	Active  bool          `json:"active"`
	Visible bool          `json:"visible"`
	Windows []WindowState `json:"windows"`
}

// WindowState is a point-in-time view of one timing window.
type WindowState struct {
	Index  int    `json:"index"`
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
	Source string `json:"source,omitempty"`
	Active bool   `json:"active"`
}

// Snapshot returns the state of every overlay in declaration order. It is
// safe to call from any goroutine.
func (p *Projector) Snapshot() []OverlayState {
	entries := p.snapshotEntries()
	out := make([]OverlayState, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.state())
	}
	return out
}

// State returns the state of one overlay.
func (p *Projector) State(id string) (OverlayState, bool) {
	p.mu.RLock()
	e, ok := p.byID[id]
	p.mu.RUnlock()
	if !ok {
		return OverlayState{}, false
	}
	return e.state(), true
}

func (e *entry) state() OverlayState {
	st := OverlayState{
		ID:      e.id,
		Kind:    e.el.Kind().String(),
		Visible: e.el.Visible(),
		Windows: make([]WindowState, 0, len(e.slots)),
	}
	for _, s := range e.slots {
		active := s.active.Load()
		st.Active = st.Active || active
		st.Windows = append(st.Windows, WindowState{
			Index:  s.index,
			Start:  s.desc.Start.String(),
			End:    s.desc.End.String(),
			Source: s.desc.Source,
			Active: active,
		})
	}
	return st
}
