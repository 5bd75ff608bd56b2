// Package httpapi implements the admin/observability HTTP surface:
// /health, /v1/stats, and /metrics. Grounded on the teacher's
// internal/adapter/http package (mux.Router, a single Server wrapping
// it, handlers reading from the tenant manager), generalized from
// per-tenant stats to the single Engine's own Stats/Metrics, and
// switched from encoding/json to goccy/go-json for response encoding
// (spec section 11 domain stack: goccy/go-json has no other home once
// the teacher's tenant-scoped JSON stream handlers are dropped).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kvmemo/kvmemo/internal/engine"
	"github.com/kvmemo/kvmemo/internal/metrics"
)

// Server is the admin HTTP surface. It is intentionally unauthenticated
// (spec section 13 non-goals: no authentication in scope) and is meant
// to sit behind a private network boundary, not be exposed publicly.
type Server struct {
	engine  *engine.Engine
	metrics *metrics.Simple
	router  *mux.Router
	http    *http.Server
	started time.Time
}

// New builds a Server bound to addr, reporting eng's stats and m's
// counters. m may be nil if the caller is using the Prometheus
// reporter exclusively — /v1/stats then omits the "counters" object.
func New(addr string, eng *engine.Engine, m *metrics.Simple) *Server {
	s := &Server{
		engine:  eng,
		metrics: m,
		router:  mux.NewRouter(),
		started: time.Now(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// ListenAndServe starts the admin HTTP server, blocking until it stops
// or errors.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the admin HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"uptime_seconds": time.Since(s.started).Seconds(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	engStats := s.engine.Stats()

	body := map[string]any{
		"shard_count": engStats.ShardCount,
		"key_count":   engStats.TotalKeys,
		"memory_used": engStats.MemoryUsed,
	}
	if s.metrics != nil {
		body["counters"] = s.metrics.Snapshot()
	}
	_ = json.NewEncoder(w).Encode(body)
}
