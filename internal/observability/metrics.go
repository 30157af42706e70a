// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stanbol",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stanbol",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	lockWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stanbol",
			Subsystem: "lock",
			Name:      "wait_seconds",
			Help:      "Time spent waiting for ontology locks.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
)

// RegisterMetrics registers the HTTP collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, lockWait)
	})
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordLockWait records how long a request waited for a lock in mode
// ("read", "write" or "global").
func RecordLockWait(mode string, waited time.Duration) {
	RegisterMetrics()
	lockWait.WithLabelValues(mode).Observe(waited.Seconds())
}
