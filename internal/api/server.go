// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the HTTP surface used by remote players: playback
// ingress, overlay state and the stage markup.
package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/projector/internal/api/middleware"
	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/overlay"
	"github.com/ManuGH/projector/internal/playbus"
	"github.com/ManuGH/projector/internal/projector"
)

// DefaultMaxBodyBytes bounds playback request bodies.
const DefaultMaxBodyBytes = 4 << 10

// Player receives playback updates and lists the mounted elements.
// host.Player implements it.
type Player interface {
	playbus.Sink
	Stage() []*overlay.Element
}

// Engine reports overlay state. *projector.Projector implements it.
type Engine interface {
	Snapshot() []projector.OverlayState
	State(id string) (projector.OverlayState, bool)
}

// Config configures the HTTP server.
type Config struct {
	RateLimitRPS   int
	TracingService string // empty disables otelhttp
	MaxBodyBytes   int64
	Version        string
}

// Server routes HTTP requests to the player and the current engine.
type Server struct {
	cfg    Config
	player Player
	logger zerolog.Logger
	router *chi.Mux

	mu     sync.RWMutex
	engine Engine
}

// New builds the router. engine may be nil until a cue sheet is installed.
func New(cfg Config, player Player, engine Engine) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		cfg:    cfg,
		player: player,
		engine: engine,
		logger: xglog.WithComponent("api"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// SetEngine swaps the engine, e.g. after a cue sheet reload.
func (s *Server) SetEngine(e Engine) {
	s.mu.Lock()
	s.engine = e
	s.mu.Unlock()
}

func (s *Server) currentEngine() Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

func (s *Server) routes() *chi.Mux {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.cfg.TracingService,
		EnableLogging:  true,
		RateLimitRPS:   s.cfg.RateLimitRPS,
	})

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/playback/time", s.handlePlaybackTime)
		r.Post("/playback/seek", s.handlePlaybackSeek)
		r.Post("/playback/events/{name}", s.handlePlaybackEvent)

		r.Get("/overlays", s.handleListOverlays)
		r.Get("/overlays/{id}", s.handleGetOverlay)
		r.Get("/stage", s.handleStage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed")
	})
	return r
}
