package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/handler"
	"github.com/segyhp/loan-ledger/internal/logging"
	"github.com/segyhp/loan-ledger/internal/qrcode"
	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/internal/service"
	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	// Initialize database
	db, err := repository.OpenPostgres(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis only backs the status cache and idempotency keys, so the API
	// still serves without it.
	var (
		redisClient *redis.Client
		statusCache cache.StatusCache
	)
	if rdb, err := cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn("redis unavailable, running without cache and idempotency", "addr", cfg.Redis.Addr, "error", err)
	} else {
		redisClient = rdb
		defer redisClient.Close()
		statusCache = cache.NewStatusCache(redisClient, cfg.Business.StatusCacheTTL)
	}

	settings := service.SettingsFromConfig(cfg)
	clock := utils.SystemClock()
	repos := repository.NewRepos(db)

	loanService := service.NewLoanService(repos.Loans, settings, clock, logger)
	paymentService := service.NewPaymentService(repos, qrcode.NewPNGRenderer(cfg.Business.QRCodeSize), statusCache, settings, clock, logger)
	reconciler := service.NewReconciliationService(repos.DailyPayments, repository.NewUnitOfWork(db), statusCache, settings, clock, logger)

	router := handler.NewRouter(handler.Handlers{
		Loans:    handler.NewLoanHandler(loanService, logger),
		Payments: handler.NewPaymentHandler(paymentService, logger),
		Webhooks: handler.NewWebhookHandler(reconciler, cfg.Webhook.Secret, logger),
		Health:   handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
	}, cfg, redisClient, logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server exited")
}
