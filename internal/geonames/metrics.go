// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geonames

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	features = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stanbol",
			Subsystem: "geonames",
			Name:      "features_total",
			Help:      "Feature lines processed by the indexer, by outcome.",
		},
		[]string{"outcome"},
	)
	downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stanbol",
			Subsystem: "geonames",
			Name:      "downloads_total",
			Help:      "Dump downloads, by outcome.",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics registers the indexer collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(features, downloads)
	})
}
