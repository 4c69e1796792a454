package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chezblos/internal/config"
	apierrors "chezblos/internal/errors"
	"chezblos/internal/export"
	"chezblos/internal/infrastructure"
	customMiddleware "chezblos/internal/middleware"
	transport "chezblos/internal/transport/http"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Application represents the main application container
type Application struct {
	config *config.Config
	logger *slog.Logger
	router chi.Router
	server *http.Server

	registry      *prometheus.Registry
	exportService *export.Service
	errorHandler  *apierrors.ErrorHandler
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	logger.Info("application initialized",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("brand", cfg.Export.BrandName),
	)

	return app, nil
}

// initializeServices wires the export engine and its metrics
func (a *Application) initializeServices() {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := export.NewMetrics(a.registry)
	a.exportService = export.NewService(export.DocumentConfig{
		BrandName: a.config.Export.BrandName,
		LogoPath:  a.config.Export.LogoPath,
	}, a.logger, metrics)

	a.errorHandler = apierrors.NewErrorHandler(a.logger, false)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.logger))
	r.Use(customMiddleware.Recoverer(a.logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.config.Security.AllowedOrigins,
			Logger:         a.logger,
		}))
	}

	if a.config.Security.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.config.Security.RateLimit.RPS,
			a.config.Security.RateLimit.Burst,
			a.logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	healthHandler := transport.NewHealthHandler(a.logger, Version)
	exportHandler := transport.NewExportHandler(
		a.exportService, a.logger, a.errorHandler, a.config.Server.MaxBodyBytes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/exports", exportHandler.Routes())
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:        a.router,
		ReadTimeout:    a.config.Server.ReadTimeout,
		WriteTimeout:   a.config.Server.WriteTimeout,
		IdleTimeout:    a.config.Server.IdleTimeout,
		MaxHeaderBytes: a.config.Server.MaxHeaderBytes,
	}
}

// Router exposes the configured router, primarily for tests
func (a *Application) Router() chi.Router {
	return a.router
}

// Start starts the HTTP server and blocks until it stops
func (a *Application) Start() error {
	a.logger.Info("server listening", slog.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.Stop(ctx)
}
