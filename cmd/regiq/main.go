package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/regiq/regiq/config"
	"github.com/regiq/regiq/internal/api"
	"github.com/regiq/regiq/internal/auth"
	"github.com/regiq/regiq/internal/database"
	"github.com/regiq/regiq/internal/feed"
	"github.com/regiq/regiq/internal/gapdetect"
	"github.com/regiq/regiq/internal/lease"
	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/metrics"
	middlewares "github.com/regiq/regiq/internal/middleware"
	"github.com/regiq/regiq/internal/pipeline"
	"github.com/regiq/regiq/internal/ratelimit"
	"github.com/regiq/regiq/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting RegIQ application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize store
	alertStore := store.New(db)

	// Redis-backed sync leases and rate limiting, with in-process fallbacks
	var leases pipeline.Leaser
	var limiter *ratelimit.Manager
	if cfg.Redis.URL != "" {
		redisLeases, err := lease.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisLeases.Close()
		leases = redisLeases

		limiter, err = ratelimit.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to initialize rate limiter", "error", err)
		}
		defer limiter.Close()
	} else {
		logger.Warn("REDIS_URL not set; sync leases are process-local")
		leases = lease.NewLocalManager()
	}

	// Initialize ingestion pipeline
	fetcher := feed.NewFetcher(cfg.Sync.FetchTimeout, cfg.Sync.UserAgent, cfg.Sync.RetryAttempts)
	parser := feed.NewParser()
	syncService := pipeline.NewSyncService(alertStore, leases, fetcher, parser, config.DefaultFeeds(), cfg.Sync)

	// Start background sync scheduler
	go func() {
		if err := syncService.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Sync scheduler error", "error", err)
		}
	}()

	// Gap detector
	detector := gapdetect.NewDetector(alertStore, cfg.Gap.BatchLimit, nil)

	// API key repository (nil semantics handled by the handler when no DB)
	var keys *auth.Repository
	if db.IsConfigured() {
		keys = auth.NewRepository(db)
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)
	r.Use(middlewares.CORS([]string{"*"}))
	r.Use(middlewares.APIKeyAuth(cfg.Auth, keys))
	if limiter != nil {
		r.Use(middlewares.RedisRateLimit(limiter, cfg.Auth.RatePerMinute))
	} else {
		r.Use(middlewares.RateLimit(cfg.Auth.RatePerMinute))
	}

	// Initialize API handlers
	apiHandler := api.NewHandler(alertStore, syncService, detector, keys, cfg.Admin.AdminSecret, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
