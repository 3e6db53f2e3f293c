/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics for the scheduler.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PlaysTotal counts tracks started, labeled by platform.
	PlaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skald_plays_total",
		Help: "Tracks started, by platform.",
	}, []string{"platform"})

	// QueueLength tracks the current fairness queue depth.
	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skald_queue_length",
		Help: "Current number of queued tracks.",
	})

	// SyncCyclesTotal counts catalog refresh cycles, labeled by outcome.
	SyncCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skald_sync_cycles_total",
		Help: "Catalog refresh cycles, by outcome.",
	}, []string{"outcome"})

	// ProviderFailuresTotal counts catalog fetch failures, by provider.
	ProviderFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skald_provider_failures_total",
		Help: "Catalog fetch failures, by provider.",
	}, []string{"provider"})

	// AutoplayFiresTotal counts end-of-track countdowns that fired.
	AutoplayFiresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skald_autoplay_fires_total",
		Help: "End-of-track countdowns that fired and advanced playback.",
	})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
