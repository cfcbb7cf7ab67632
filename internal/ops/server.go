// Package ops exposes the operational HTTP surface: health probes, breaker
// states, and Prometheus metrics.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowsend/aegis/internal/resilience/breaker"
)

// Prober reports whether a backing service is reachable.
type Prober interface {
	Health(ctx context.Context) error
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	breakers *breaker.Registry
	probes   map[string]Prober
	server   *http.Server
}

// NewServer creates a new ops server. probes maps a name ("database",
// "redis") to its health check; nil probers are skipped.
func NewServer(breakers *breaker.Registry, probes map[string]Prober, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		breakers: breakers,
		probes:   probes,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/breakers", s.handleBreakers)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.probes))
	healthy := true

	for name, probe := range s.probes {
		if probe == nil {
			continue
		}
		if err := probe.Health(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleBreakers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.breakers.States())
}
