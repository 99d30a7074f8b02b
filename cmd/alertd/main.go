package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-alert-service/internal/adapter/http"
	"github.com/couchcryptid/storm-alert-service/internal/adapter/nws"
	"github.com/couchcryptid/storm-alert-service/internal/config"
	"github.com/couchcryptid/storm-alert-service/internal/notify"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
	"github.com/couchcryptid/storm-alert-service/internal/ratelimit"
	"github.com/couchcryptid/storm-alert-service/internal/settings"
	"github.com/couchcryptid/storm-alert-service/internal/storage"
	"github.com/couchcryptid/storm-alert-service/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	store, err := storage.OpenBolt(cfg.DataPath)
	if err != nil {
		logger.Error("failed to open state database", "error", err)
		os.Exit(1)
	}

	settingsStore := settings.NewStore(store, logger)
	track := tracker.New(store, logger)

	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow, nil)
	client := nws.NewClient(cfg.NWSBaseURL, cfg.NWSUserAgent, cfg.NWSTimeout, limiter, metrics, nil, logger)

	// Notification sink (feature-flagged via NOTIFY_ENABLED / KAFKA_BROKERS).
	var notifier notify.Notifier
	var kafkaNotifier *notify.Kafka
	if cfg.NotifyEnabled {
		kafkaNotifier = notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaNotifyTopic, logger)
		notifier = kafkaNotifier
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaNotifyTopic)
	} else {
		notifier = notify.NewLog(logger)
		logger.Info("kafka notifications disabled, logging notifications")
	}

	p := pipeline.New(client, client, settingsStore, track, notifier, store,
		metrics, logger, nil, cfg.PollInterval, cfg.StaleAfter)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, settingsStore, track, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start alert pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("state database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
