// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package host provides in-process playback bindings for a projector.
package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/projector"
)

var (
	ErrAlreadyMounted = errors.New("element already mounted")
	ErrNotMounted     = errors.New("element not mounted")
)

type subscription struct {
	id uint64
	fn func()
}

// Player holds playback state fed by an external player (HTTP, Redis or a
// simulated Clock) and implements projector.Host. Handlers are called
// outside the player's lock, in subscription order.
type Player struct {
	mu      sync.Mutex
	at      float64
	hasTime bool
	seeking bool
	nextSub uint64
	subs    map[string][]subscription
	stage   []*overlay.Element
	logger  zerolog.Logger
}

var _ projector.Host = (*Player)(nil)

// NewPlayer returns a player with no known playback position.
func NewPlayer() *Player {
	return &Player{
		subs:   make(map[string][]subscription),
		logger: xglog.WithComponent("player"),
	}
}

func (p *Player) CurrentTime() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.at, p.hasTime
}

func (p *Player) Seeking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seeking
}

// OnPlaybackEvent subscribes handler to name.
func (p *Player) OnPlaybackEvent(name string, handler func()) func() {
	if handler == nil {
		return func() {}
	}
	p.mu.Lock()
	p.nextSub++
	id := p.nextSub
	p.subs[name] = append(p.subs[name], subscription{id: id, fn: handler})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			subs := p.subs[name]
			for i, s := range subs {
				if s.id == id {
					p.subs[name] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(p.subs[name]) == 0 {
				delete(p.subs, name)
			}
		})
	}
}

// Mount places el on the stage, assigning a random id when it has none.
func (p *Player) Mount(el *overlay.Element) error {
	if el == nil {
		return fmt.Errorf("mount: nil element")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.stage {
		if m == el {
			return ErrAlreadyMounted
		}
	}
	el.EnsureID(uuid.NewString)
	p.stage = append(p.stage, el)
	return nil
}

// Unmount removes el from the stage.
func (p *Player) Unmount(el *overlay.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, m := range p.stage {
		if m == el {
			p.stage = append(p.stage[:i], p.stage[i+1:]...)
			return nil
		}
	}
	return ErrNotMounted
}

// Stage lists the mounted elements, most recently mounted first.
func (p *Player) Stage() []*overlay.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*overlay.Element, 0, len(p.stage))
	for i := len(p.stage) - 1; i >= 0; i-- {
		out = append(out, p.stage[i])
	}
	return out
}

// SetTime records a playback sample and emits timeupdate.
func (p *Player) SetTime(at float64, seeking bool) {
	p.mu.Lock()
	p.at, p.hasTime, p.seeking = at, true, seeking
	p.mu.Unlock()
	p.Emit(projector.EventTimeUpdate)
}

// Seek jumps to at: seeking, then a timeupdate sampled while seeking, then
// seeked.
func (p *Player) Seek(at float64) {
	p.mu.Lock()
	p.seeking = true
	p.mu.Unlock()
	p.Emit(projector.EventSeeking)

	p.SetTime(at, true)

	p.mu.Lock()
	p.seeking = false
	p.mu.Unlock()
	p.Emit(projector.EventSeeked)
}

// Emit fires a named playback event.
func (p *Player) Emit(name string) {
	name = strings.TrimSpace(name)
	p.mu.Lock()
	subs := append([]subscription(nil), p.subs[name]...)
	p.mu.Unlock()

	p.logger.Trace().
		Str(xglog.FieldEvent, "player.emit").
		Str(xglog.FieldPlaybackEvent, name).
		Int("subscribers", len(subs)).
		Msg("playback event")

	for _, s := range subs {
		s.fn()
	}
}

// Events lists the event names with at least one subscriber.
func (p *Player) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.subs))
	for name := range p.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
