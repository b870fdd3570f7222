package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/audeasy/audeasy/config"
	"github.com/audeasy/audeasy/internal/api"
	"github.com/audeasy/audeasy/internal/auth"
	"github.com/audeasy/audeasy/internal/billing"
	"github.com/audeasy/audeasy/internal/database"
	"github.com/audeasy/audeasy/internal/defaults"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/metrics"
	middlewares "github.com/audeasy/audeasy/internal/middleware"
	"github.com/audeasy/audeasy/internal/ratelimit"
	"github.com/audeasy/audeasy/internal/store"
	"github.com/audeasy/audeasy/internal/wizard"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting AudEasy application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close(ctx)

	// Initialize stores
	carStore := store.New(db)
	patternStore := store.NewPatterns(db)

	// Initialize domain engines
	defaultsEngine := defaults.New(patternStore, cfg.Defaults)
	sessions := wizard.NewManager(cfg.Defaults.SessionTTL)
	go sessions.Run(ctx, sessionSweepInterval)

	// Redis-backed rate limiting and quota accounting (optional)
	var limiter *ratelimit.Manager
	if cfg.Redis.URL != "" {
		limiter, err = ratelimit.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer limiter.Close()
		logger.Info("Redis rate limiting enabled")
	}

	// Stripe billing (optional)
	var billingSvc *billing.Service
	if cfg.Billing.StripeSecretKey != "" {
		billingSvc = billing.NewService(cfg.Billing, db)
		logger.Info("Stripe billing enabled")
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
	r.Use(middlewares.APIKeyAuth(cfg.Auth))
	r.Use(middlewares.RateLimit(cfg.Defaults.RequestsPerMin))
	if limiter != nil {
		r.Use(middlewares.RedisRateQuotaEnforcer(limiter))
	}

	// Initialize API handlers
	apiHandler := api.NewHandler(carStore, defaultsEngine, sessions, billingSvc, db, cfg.Admin.AdminSecret, Version, BuildTime, GitCommit)
	apiHandler.RegisterRoutes(r)

	// API key verification needs the DB from the request context
	baseCtx := auth.WithDB(context.Background(), db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{Addr: fmt.Sprintf(":%d", cfg.Metrics.Port), Handler: mux}

		g.Go(func() error {
			logger.Info("Starting metrics server", "address", metricsSrv.Addr, "path", cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
		defer cancel()

		if metricsSrv != nil {
			metricsSrv.Shutdown(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
