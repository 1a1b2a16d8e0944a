// Package server hosts the SubnetScope HTTP surface: the core health,
// cache and metrics endpoints plus every enabled module's routes mounted
// under /api/v1/{module}/.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/plugin"
	"github.com/subnetscope/subnetscope/internal/version"
)

// HealthInfo is the static configuration echoed by the health endpoint.
type HealthInfo struct {
	APIBase          string
	DefaultSubnet    int
	APIKeyConfigured bool
}

// Server is the main SubnetScope server.
type Server struct {
	httpServer *http.Server
	registry   *plugin.Registry
	caches     *cache.Store
	health     HealthInfo
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance.
func New(addr string, reg *plugin.Registry, caches *cache.Store, health HealthInfo, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry: reg,
		caches:   caches,
		health:   health,
		logger:   logger,
		mux:      mux,
	}

	s.registerCoreRoutes()
	s.mountModuleRoutes()

	return s
}

// Handler returns the server's root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/cache/clear", s.handleCacheClear)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// mountModuleRoutes registers all module routes under /api/v1/{module}/.
func (s *Server) mountModuleRoutes() {
	for moduleName, routes := range s.registry.AllRoutes() {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, moduleName, route.Path)
			s.mux.HandleFunc(pattern, route.Handler)
			s.logger.Debug("mounted route",
				zap.String("module", moduleName),
				zap.String("pattern", pattern),
			)
		}
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
//
//	@Summary		Service health
//	@Description	Returns service status, build info, upstream configuration and cache occupancy.
//	@Tags			core
//	@Produce		json
//	@Success		200 {object} map[string]any
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-SubnetScope-Version", version.Short())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version.Map(),
		"config": map[string]any{
			"api_base":           s.health.APIBase,
			"default_subnet":     s.health.DefaultSubnet,
			"api_key_configured": s.health.APIKeyConfigured,
		},
		"cache": map[string]any{
			"keys": s.caches.KeyCount(),
		},
	})
}

// handleCacheClear drops every cached snapshot and analysis.
//
//	@Summary		Clear result caches
//	@Description	Empties the snapshot and analysis caches so the next requests hit the registry again.
//	@Tags			core
//	@Success		200 {object} map[string]any
//	@Router			/cache/clear [post]
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.caches.ClearAll()
	s.logger.Info("caches cleared")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Cache cleared successfully",
	})
}
