package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haulhire/leadpool-engine-go/internal/config"
	"github.com/haulhire/leadpool-engine-go/internal/domain"
	"github.com/haulhire/leadpool-engine-go/internal/handler"
	"github.com/haulhire/leadpool-engine-go/internal/infra/cache"
	"github.com/haulhire/leadpool-engine-go/internal/infra/observability"
	"github.com/haulhire/leadpool-engine-go/internal/infra/resilience"
	"github.com/haulhire/leadpool-engine-go/internal/infra/supabase"
	"github.com/haulhire/leadpool-engine-go/internal/scheduler"
	"github.com/haulhire/leadpool-engine-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("distribution_interval", cfg.DistributionInterval),
		zap.Duration("run_timeout", cfg.RunTimeout),
		zap.Int("pool_batch_limit", cfg.PoolBatchLimit),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "leadpool-engine")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	badLeadsCache := cache.New[*domain.BadLeadsReport](cfg.BadLeadsCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	supplySvc := service.NewSupplyService(store, store, badLeadsCache, metrics, logger, cfg.PoolBatchLimit, cfg.MinPhoneDigits)
	distributorSvc := service.NewDistributorService(store, store, store, metrics, logger, resilienceCfg, cfg.PoolBatchLimit)
	recallSvc := service.NewRecallService(store, store, metrics, logger)
	cleanupSvc := service.NewCleanupService(store, store, badLeadsCache, metrics, logger, cfg.PoolBatchLimit, cfg.MinPhoneDigits, cfg.MaxConcurrency)
	controlSvc := service.NewControlService(store, logger)
	reportingSvc := service.NewReportingService(store, store, logger)
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.SchedulerKeyHash, logger)

	// --- Handlers ---
	adminHandler := handler.NewAdminHandler(supplySvc, reportingSvc, controlSvc, metrics, logger)
	poolHandler := handler.NewPoolHandler(distributorSvc, recallSvc, cleanupSvc, logger)

	// --- Router ---
	router := handler.NewRouter(adminHandler, poolHandler, authSvc, controlSvc, metrics, logger)

	// --- Background scheduler ---
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	sched := scheduler.New(distributorSvc, cfg.DistributionInterval, cfg.RunTimeout, logger)
	go sched.Run(schedCtx)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	schedCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
