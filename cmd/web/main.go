package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"salesinsights/internal/config"
	"salesinsights/internal/loader"
	"salesinsights/internal/middleware"
	"salesinsights/internal/observability"
	"salesinsights/internal/server"
	"salesinsights/internal/services"
	"salesinsights/internal/ui"
)

const (
	renderTimeout = 10 * time.Second
	loadTimeout   = 30 * time.Second
	cacheMaxAge   = "public, max-age=300"

	limiterSweepInterval = time.Minute
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := ui.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// newHandler builds the middleware chain around the routes. The rate limiter
// janitor stops with ctx.
func newHandler(ctx context.Context, cfg *config.Config, dashboard *services.Dashboard, logger *slog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: handleDashboard,
	}

	srv := server.NewServer(dashboard, logger, templateHandlers, gatherer)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	if cfg.Security.EnableRateLimit {
		go rateLimiter.Run(ctx, limiterSweepInterval)
	}
	metrics := middleware.NewMetrics(reg)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		// innermost so the mux route pattern is visible
		metrics.Middleware(),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"data_dir", cfg.Data.Dir,
		"addr", cfg.Address(),
	)

	cacheDir := ""
	if cfg.Cache.Enabled {
		cacheDir = cfg.Cache.Dir
	}
	fsys := afero.NewOsFs()
	dashboard := services.NewDashboard(fsys, logger, cacheDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	start := time.Now()
	l := loader.New(fsys, cfg.Data, io.Discard, logger)
	if err := dashboard.LoadFromDir(loadCtx, l, cfg.Data.Dir); err != nil {
		logger.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	logger.Info("data loaded successfully", "duration", time.Since(start))

	handler := newHandler(ctx, cfg, dashboard, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down dashboard service", "stats", dashboard.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
