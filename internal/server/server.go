package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesinsights/internal/handlers"
	"salesinsights/internal/services"
)

type Server struct {
	dashboard   *services.Dashboard
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
	metrics     http.Handler
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer wires the routes. A nil gatherer serves the default Prometheus registry.
func NewServer(dashboard *services.Dashboard, logger *slog.Logger, templateHandlers *TemplateHandlers, gatherer prometheus.Gatherer) *Server {
	metrics := promhttp.Handler()
	if gatherer != nil {
		metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	s := &Server{
		dashboard:   dashboard,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(dashboard, logger),
		sseHandlers: handlers.NewSSEHandlers(dashboard, logger),
		metrics:     metrics,
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metrics)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("GET /api/breakdown/{dimension}", s.apiHandlers.HandleBreakdown)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/summary", s.sseHandlers.HandleSummary)
	s.mux.HandleFunc("GET /sse/breakdown/{dimension}", s.sseHandlers.HandleBreakdown)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
