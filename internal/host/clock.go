// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package host

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/projector/internal/projector"
)

// ErrClockRunning is returned by Start when the clock is already ticking.
var ErrClockRunning = errors.New("clock already running")

// Clock advances a Player along a simulated timeline at playback rate 1.
type Clock struct {
	player   *Player
	interval time.Duration
	duration float64

	mu       sync.Mutex
	position float64
	playing  bool
	stop     chan struct{}
	done     chan struct{}
}

// NewClock returns a paused clock at position 0. duration <= 0 means the
// timeline never ends.
func NewClock(player *Player, interval time.Duration, duration float64) *Clock {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Clock{player: player, interval: interval, duration: duration}
}

// Position returns the simulated playback position in seconds.
func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Playing reports whether the clock advances on ticks.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Play resumes playback and emits play.
func (c *Clock) Play() {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = true
	at := c.position
	c.mu.Unlock()

	c.player.Emit(projector.EventPlay)
	c.player.SetTime(at, false)
}

// Pause halts playback and emits pause.
func (c *Clock) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	c.mu.Unlock()

	c.player.Emit(projector.EventPause)
}

// Seek moves the position, clamped to the timeline, through Player.Seek.
func (c *Clock) Seek(at float64) {
	c.mu.Lock()
	at = c.clamp(at)
	c.position = at
	c.mu.Unlock()

	c.player.Seek(at)
}

// Advance moves a playing clock forward by d and publishes the sample.
// Reaching the end of the timeline pauses the clock and emits ended.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.position = c.clamp(c.position + d.Seconds())
	at := c.position
	ended := c.duration > 0 && at >= c.duration
	if ended {
		c.playing = false
	}
	c.mu.Unlock()

	c.player.SetTime(at, false)
	if ended {
		c.player.Emit(projector.EventPause)
		c.player.Emit(projector.EventEnded)
	}
}

func (c *Clock) clamp(at float64) float64 {
	if at < 0 {
		return 0
	}
	if c.duration > 0 && at > c.duration {
		return c.duration
	}
	return at
}

// Start ticks the clock in a background goroutine until ctx is done or Stop
// is called.
func (c *Clock) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return ErrClockRunning
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(ctx, c.stop, c.done)
	return nil
}

func (c *Clock) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			c.Advance(now.Sub(last))
			last = now
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the ticker goroutine and waits for it to exit. It is safe to
// call on a clock that was never started.
func (c *Clock) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
