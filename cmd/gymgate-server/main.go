package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/config"
	"github.com/tovigym/gymgate/internal/db"
	"github.com/tovigym/gymgate/internal/gymgate/service"
	"github.com/tovigym/gymgate/internal/gymgate/store/sqlite"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
	"github.com/tovigym/gymgate/internal/httpapi"
)

func main() {
	cfg := config.FromEnv()

	logger, _ := zap.NewProduction()
	if cfg.Env == "dev" {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	database, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, database, db.SeedDevOptions{}); err != nil {
			logger.Fatal("seed dev data", zap.Error(err))
		}
	}

	writer := db.NewWorker(database)
	defer writer.Close()

	// Stores
	settingsStore := sqlite.NewSettingsStore(database, writer)
	tokenStore := sqlite.NewTokenStore(database, writer)
	eventStore := sqlite.NewAccessEventStore(database, writer)
	syncLogStore := sqlite.NewSyncLogStore(database, writer)
	credentialStore := sqlite.NewCredentialStore(database, writer)
	registrationStore := sqlite.NewRegistrationLogStore(database, writer)
	memberStore := sqlite.NewMemberStore(database)

	// Vendor client
	vendor := vendorapi.NewHTTPClient(time.Duration(cfg.VendorTimeoutSeconds) * time.Second)

	// Services
	tokens := service.NewTokenManager(settingsStore, tokenStore, vendor, logger)
	settings := service.NewSettingsService(settingsStore, tokens, logger)
	subs := service.NewSubscriptionManager(settingsStore, tokens, vendor, syncLogStore, logger)
	ingest := service.NewIngestor(eventStore, syncLogStore, logger)
	registration := service.NewRegistrationService(
		memberStore, credentialStore, registrationStore, settingsStore, tokens, vendor, logger,
	)

	poller := service.NewEventPoller(
		settingsStore, subs, tokens, vendor, ingest, syncLogStore,
		service.PollerConfig{
			Interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
			PageSize: cfg.PollPageSize,
		},
		logger,
	)
	poller.Start(ctx)
	defer poller.Stop()

	pruner := service.NewSyncLogPruner(syncLogStore, service.PrunerConfig{
		RetentionDays: cfg.SyncLogRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:       logger,
		Addr:         cfg.HTTPAddr,
		Settings:     settings,
		Registration: registration,
		Events:       eventStore,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.Start(); err != nil {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
