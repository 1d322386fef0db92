// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package projector

import (
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/timing"
)

// fakeHost is a minimal in-memory Host.
type fakeHost struct {
	mu       sync.Mutex
	at       float64
	hasTime  bool
	seeking  bool
	nextID   int
	handlers map[string]map[int]func()
	mounted  []*overlay.Element
	mountErr error
}

func newFakeHost() *fakeHost {
	return &fakeHost{handlers: make(map[string]map[int]func())}
}

func (h *fakeHost) CurrentTime() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.at, h.hasTime
}

func (h *fakeHost) Seeking() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seeking
}

func (h *fakeHost) OnPlaybackEvent(name string, handler func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.handlers[name] == nil {
		h.handlers[name] = make(map[int]func())
	}
	h.handlers[name][id] = handler
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers[name], id)
	}
}

func (h *fakeHost) Mount(el *overlay.Element) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mountErr != nil {
		return h.mountErr
	}
	h.mounted = append(h.mounted, el)
	return nil
}

func (h *fakeHost) Unmount(el *overlay.Element) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, m := range h.mounted {
		if m == el {
			h.mounted = append(h.mounted[:i], h.mounted[i+1:]...)
			return nil
		}
	}
	return nil
}

func (h *fakeHost) set(at float64, seeking bool) {
	h.mu.Lock()
	h.at, h.hasTime, h.seeking = at, true, seeking
	h.mu.Unlock()
}

// emit calls the handlers of name in subscription order, outside the lock.
func (h *fakeHost) emit(name string) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.handlers[name]))
	for id := range h.handlers[name] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.handlers[name][id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *fakeHost) subscribers(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers[name])
}

func (h *fakeHost) mountedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.mounted)
}

type call struct {
	Overlay string
	Hook    string
	At      float64
	Dirty   bool
}

// recorder collects hook invocations across overlays.
type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) hook(name string) timing.Hook {
	return func(ov overlay.Overlay, at float64, dirty bool) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, call{Overlay: ov.Render().ID(), Hook: name, At: at, Dirty: dirty})
		return nil
	}
}

func (r *recorder) hooks() timing.Hooks {
	return timing.Hooks{
		BeforeBegin: r.hook(timing.HookBeforeBegin),
		AfterBegin:  r.hook(timing.HookAfterBegin),
		BeforeEnd:   r.hook(timing.HookBeforeEnd),
		AfterEnd:    r.hook(timing.HookAfterEnd),
	}
}

func (r *recorder) take() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestProjector(t *testing.T, host Host, cfg Config) *Projector {
	t.Helper()
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	p, err := New(host, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func window(start, end string, hooks timing.Hooks) timing.Raw {
	return timing.Raw{Start: timing.Parse(start), End: timing.Parse(end), Hooks: hooks}
}

func beginCalls(id string, at float64, dirty bool) []call {
	return []call{
		{Overlay: id, Hook: timing.HookBeforeBegin, At: at, Dirty: dirty},
		{Overlay: id, Hook: timing.HookAfterBegin, At: at, Dirty: dirty},
	}
}

func endCalls(id string, at float64, dirty bool) []call {
	return []call{
		{Overlay: id, Hook: timing.HookBeforeEnd, At: at, Dirty: dirty},
		{Overlay: id, Hook: timing.HookAfterEnd, At: at, Dirty: dirty},
	}
}
