// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	xglog "github.com/ManuGH/projector/internal/log"
	"github.com/ManuGH/projector/internal/metrics"
	"github.com/ManuGH/projector/internal/playbus"
	"github.com/ManuGH/projector/internal/projector"
)

const ingressSource = "http"

type timeRequest struct {
	Time    *float64 `json:"time"`
	Seeking bool     `json:"seeking"`
}

type seekRequest struct {
	Time *float64 `json:"time"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Overlays int    `json:"overlays"`
}

func (s *Server) handlePlaybackTime(w http.ResponseWriter, r *http.Request) {
	var req timeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.reject(w, r, playbus.TypeTime, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	s.apply(w, r, playbus.Message{Type: playbus.TypeTime, Time: req.Time, Seeking: req.Seeking})
}

func (s *Server) handlePlaybackSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := s.decode(w, r, &req); err != nil {
		s.reject(w, r, playbus.TypeSeek, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	s.apply(w, r, playbus.Message{Type: playbus.TypeSeek, Time: req.Time})
}

func (s *Server) handlePlaybackEvent(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, playbus.EventMessage(chi.URLParam(r, "name")))
}

// apply forwards msg to the player. Without contention the resulting sweep
// runs on this goroutine before the response is written; while another
// request or the bus is dispatching, it is queued and may run after.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, msg playbus.Message) {
	if err := playbus.Apply(s.player, msg); err != nil {
		s.reject(w, r, msg.Type, http.StatusBadRequest, codeInvalidPlayback, err)
		return
	}
	metrics.IncPlaybackMessage(ingressSource, playbus.KindLabel(msg.Type), "applied")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request, typ string, status int, code string, err error) {
	metrics.IncPlaybackMessage(ingressSource, playbus.KindLabel(typ), "rejected")
	logger := xglog.WithContext(r.Context(), s.logger)
	logger.Debug().
		Err(err).
		Str(xglog.FieldEvent, "api.playback_rejected").
		Str("type", typ).
		Msg("rejected playback request")
	writeError(w, status, code, err.Error())
}

// decode reads one JSON object, rejecting unknown fields and trailing data.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func (s *Server) handleListOverlays(w http.ResponseWriter, _ *http.Request) {
	states := []projector.OverlayState{}
	if e := s.currentEngine(); e != nil {
		states = e.Snapshot()
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleGetOverlay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e := s.currentEngine()
	if e == nil {
		writeNotFound(w, fmt.Sprintf("overlay %q not found", id))
		return
	}
	st, ok := e.State(id)
	if !ok {
		writeNotFound(w, fmt.Sprintf("overlay %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleStage serialises the mounted elements, most recent first.
func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	for _, el := range s.player.Stage() {
		if err := el.WriteHTML(w); err != nil {
			logger := xglog.WithContext(r.Context(), s.logger)
			logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "api.stage_write_failed").
				Str(xglog.FieldOverlayID, el.ID()).
				Msg("stage serialisation aborted")
			return
		}
		_, _ = io.WriteString(w, "\n")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.cfg.Version}
	if e := s.currentEngine(); e != nil {
		resp.Overlays = len(e.Snapshot())
	}
	writeJSON(w, http.StatusOK, resp)
}
