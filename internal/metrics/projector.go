// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the prometheus collectors exported by projector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transition directions and triggers used as label values.
const (
	DirectionBegin = "begin"
	DirectionEnd   = "end"

	TriggerTime  = "time"
	TriggerEvent = "event"
)

var (
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projector_transitions_total",
		Help: "Overlay window transitions fired by the activation engine",
	}, []string{"direction", "trigger"}) // direction=begin|end trigger=time|event

	HookFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projector_hook_failures_total",
		Help: "Lifecycle hook invocations that returned an error or panicked",
	}, []string{"hook"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "projector_sweep_duration_seconds",
		Help:    "Time spent evaluating all timing windows for one playback sample",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
	})

	overlaysMounted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projector_overlays_mounted",
		Help: "Overlays currently mounted across all projector instances",
	})
)

// IncTransition records one begin or end transition.
func IncTransition(direction, trigger string) {
	TransitionsTotal.WithLabelValues(direction, trigger).Inc()
}

// IncHookFailure records a failed lifecycle hook.
func IncHookFailure(hook string) {
	if hook == "" {
		hook = "unknown"
	}
	HookFailuresTotal.WithLabelValues(hook).Inc()
}

// ObserveSweep records the duration of one update sweep.
func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}

// AddMountedOverlays adjusts the mounted overlay gauge by delta.
func AddMountedOverlays(delta int) {
	overlaysMounted.Add(float64(delta))
}
