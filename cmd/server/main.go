package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/stormhaven/stormhaven/internal/adapter/badgerkv"
	"github.com/stormhaven/stormhaven/internal/adapter/duckdb"
	httpadapter "github.com/stormhaven/stormhaven/internal/adapter/http"
	kafkaadapter "github.com/stormhaven/stormhaven/internal/adapter/kafka"
	"github.com/stormhaven/stormhaven/internal/config"
	"github.com/stormhaven/stormhaven/internal/favorites"
	"github.com/stormhaven/stormhaven/internal/ingest"
	"github.com/stormhaven/stormhaven/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := duckdb.Open(ctx, cfg.DatabasePath, clockwork.NewRealClock(), logger, metrics)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Favorites persist through Badger when a directory is configured;
	// otherwise they live for the process lifetime only.
	var favStorage favorites.Storage
	if cfg.BadgerDir != "" {
		kv, err := badgerkv.Open(cfg.BadgerDir, logger)
		if err != nil {
			logger.Error("failed to open favorites storage", "error", err)
			os.Exit(1)
		}
		defer kv.Close()
		favStorage = kv
	} else {
		logger.Info("favorites storage is in-memory, set badger_dir to persist")
		favStorage = favorites.NewMemoryStorage()
	}
	favStore, err := favorites.New(ctx, favStorage)
	if err != nil {
		logger.Error("failed to load favorites", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(httpadapter.Config{
		Addr:            cfg.HTTPAddr,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}, store, favStore, metrics, logger)

	var reader *kafkaadapter.Reader
	if cfg.Kafka.Enabled {
		reader = kafkaadapter.NewReader(cfg.Kafka, logger)
		consumer := ingest.New(reader, store, logger, metrics, cfg.Kafka.BatchSize)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("ingest consumer error", "error", err)
			}
		}()
		logger.Info("declarations ingest enabled",
			"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		logger.Info("declarations ingest disabled")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
