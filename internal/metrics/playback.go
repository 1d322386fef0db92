// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlaybackMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projector_playback_messages_total",
		Help: "Playback samples and events received from remote players",
	}, []string{"source", "kind", "outcome"}) // source=http|redis kind=time|seek|event outcome=applied|rejected

	CueSheetReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projector_cuesheet_reloads_total",
		Help: "Cue sheet reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure
)

// IncPlaybackMessage records one playback ingress message.
func IncPlaybackMessage(source, kind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	PlaybackMessagesTotal.WithLabelValues(source, kind, outcome).Inc()
}

// IncCueSheetReload records the outcome of a cue sheet reload.
func IncCueSheetReload(outcome string) {
	CueSheetReloadsTotal.WithLabelValues(outcome).Inc()
}
