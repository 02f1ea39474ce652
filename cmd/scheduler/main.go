package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segyhp/loan-ledger/internal/cache"
	"github.com/segyhp/loan-ledger/internal/config"
	"github.com/segyhp/loan-ledger/internal/logging"
	"github.com/segyhp/loan-ledger/internal/qrcode"
	"github.com/segyhp/loan-ledger/internal/repository"
	"github.com/segyhp/loan-ledger/internal/scheduler"
	"github.com/segyhp/loan-ledger/internal/service"
	"github.com/segyhp/loan-ledger/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "scheduler")
	slog.SetDefault(logger)

	db, err := repository.OpenPostgres(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Expiry writes no cache entries; stale ones age out on their own TTL.
	var statusCache cache.StatusCache

	payments := service.NewPaymentService(
		repository.NewRepos(db),
		qrcode.NewPNGRenderer(cfg.Business.QRCodeSize),
		statusCache,
		service.SettingsFromConfig(cfg),
		utils.SystemClock(),
		logger,
	)

	s, err := scheduler.New(cfg.Scheduler.ExpirySpec, payments, cfg.Scheduler.JobTimeout, logger)
	if err != nil {
		logger.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	s.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	s.Stop(ctx)
}
