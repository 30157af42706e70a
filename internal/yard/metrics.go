// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package yard

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stanbol",
			Subsystem: "yard",
			Name:      "operations_total",
			Help:      "Total yard operations.",
		},
		[]string{"op"},
	)
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stanbol",
			Subsystem: "yard",
			Name:      "operation_duration_seconds",
			Help:      "Yard operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// RegisterMetrics registers the yard collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operations, operationDuration)
	})
}

func observe(op string, start time.Time) {
	operations.WithLabelValues(op).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
