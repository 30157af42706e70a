// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the ontology store, the yard and the tag set
// registry over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/stanbol/internal/lock"
	"github.com/pdiddy/stanbol/internal/nlp"
	"github.com/pdiddy/stanbol/internal/observability"
	"github.com/pdiddy/stanbol/internal/ontology"
	"github.com/pdiddy/stanbol/internal/yard"
	"github.com/pdiddy/stanbol/pkg/types"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
)

// Deps are the components served over HTTP.
type Deps struct {
	Ontologies ontology.PersistenceStore
	Yard       yard.Yard
	TagSets    *nlp.Registry
	Version    string
}

// Server is the stanbol REST server.
type Server struct {
	cfg     types.ServerConfig
	deps    Deps
	locks   *lock.Manager
	auth    StaticToken
	router  *gin.Engine
	started time.Time
}

// New builds the router for deps. A nil tag set registry serves the
// built-in tag sets.
func New(cfg types.ServerConfig, deps Deps) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if deps.TagSets == nil {
		deps.TagSets = nlp.DefaultRegistry()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		locks:   lock.NewManager(),
		auth:    StaticToken{Token: cfg.APIToken},
		started: time.Now(),
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	// Resource IRIs travel as escaped path segments.
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: normalizeOrigins(s.cfg.CORSOrigins),
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:       12 * time.Hour,
		}))
	}
	if err := r.SetTrustedProxies(trustedProxies(s.cfg)); err != nil {
		log.Warn().Err(err).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(s.requireToken())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.ontologyRoutes(r.Group("/ontology"))
	s.yardRoutes(r.Group("/yard"))
	s.nlpRoutes(r.Group("/nlp"))
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.started).String(),
		"service": "stanbol",
		"version": s.deps.Version,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("server_listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", s.cfg.ShutdownTimeout).Msg("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func trustedProxies(cfg types.ServerConfig) []string {
	if len(cfg.TrustedProxies) == 0 {
		return []string{"127.0.0.1", "::1"}
	}
	return cfg.TrustedProxies
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
