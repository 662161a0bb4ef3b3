package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/winds-aloft-service/internal/adapter/aviationweather"
	httpadapter "github.com/couchcryptid/winds-aloft-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/winds-aloft-service/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/winds-aloft-service/internal/adapter/nats"
	"github.com/couchcryptid/winds-aloft-service/internal/config"
	"github.com/couchcryptid/winds-aloft-service/internal/observability"
	"github.com/couchcryptid/winds-aloft-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := aviationweather.NewClient(cfg.WindsAloftURL, cfg.FetchTimeout, cfg.FetchRateLimit, logger)

	var publishers []pipeline.Publisher
	var closers []func() error

	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		closers = append(closers, writer.Close)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	if cfg.NATSURL != "" {
		pub, err := natsadapter.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, pub)
		closers = append(closers, pub.Close)
		logger.Info("nats publishing enabled", "subject_prefix", cfg.NATSSubjectPrefix)
	}

	refresher := pipeline.New(fetcher, publishers, logger, metrics, cfg.PollInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	closePublishers(shutdownCtx, refresherDone, closers, logger)

	logger.Info("shutdown complete")
}

// closePublishers waits for the refresh loop to return, or for ctx to expire,
// before closing the sinks so an in-flight publish never hits a closed writer.
func closePublishers(ctx context.Context, refresherDone <-chan struct{}, closers []func() error, logger *slog.Logger) {
	select {
	case <-refresherDone:
	case <-ctx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("publisher close error", "error", err)
		}
	}
}
