// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInitLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := initLogger(&buf, "stanbol", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "stanbol", entry["app"])

	assert.Equal(t, zerolog.InfoLevel, initLogger(&buf, "x", "loud").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, initLogger(&buf, "x", "").GetLevel())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/yard/entity", func(c *gin.Context) {
		c.Error(errors.New("entity missing"))
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/yard/entity?id=x", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/yard/entity", entry["path"])
	assert.Equal(t, float64(404), entry["status"])
	assert.Equal(t, "entity missing", entry["error"])
}

func TestRequestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(RequestMetricsMiddleware())
	r.GET("/ontology/:path", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ontology/:path", "200"))
	for _, p := range []string{"/ontology/a", "/ontology/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/ontology/:path", "200"))
	assert.Equal(t, 2.0, after-before, "requests are labelled by route template")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()
	RecordLockWait("write", 3*time.Millisecond)
}
