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

	httpadapter "github.com/madu12/metro-interstate-traffic-volume/internal/adapter/http"
	kafkaadapter "github.com/madu12/metro-interstate-traffic-volume/internal/adapter/kafka"
	"github.com/madu12/metro-interstate-traffic-volume/internal/config"
	"github.com/madu12/metro-interstate-traffic-volume/internal/dashboard"
	"github.com/madu12/metro-interstate-traffic-volume/internal/dataset"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
	"github.com/madu12/metro-interstate-traffic-volume/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	fetcher := dataset.NewSourceFetcher(cfg.FetchTimeout)
	cache := dataset.NewCache(fetcher, dataset.Sources{
		TabularURL:   cfg.TabularDataURL,
		HierarchyURL: cfg.HierarchyDataURL,
		Location:     cfg.Location(),
	}, logger, metrics)

	// Warm the tabular dataset so the first page does not pay for the fetch.
	go func() {
		if err := cache.Warm(ctx); err != nil {
			logger.Warn("dataset warm-up failed", "error", err)
		}
	}()

	checks := httpadapter.Checks{cache}

	// Interaction events are feature-flagged via KAFKA_BROKERS.
	var (
		events dashboard.Publisher
		writer *kafkaadapter.Writer
	)
	if cfg.EventsEnabled() {
		queue := pipeline.NewQueue(cfg.EventQueueSize, cfg.EventFlushInterval, clockwork.NewRealClock(), logger, metrics)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(queue, pipeline.NewTransformer(), writer, logger, metrics, cfg.EventBatchSize)

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("event pipeline error", "error", err)
			}
		}()

		events = queue
		checks = append(checks, p)
		metrics.EventSinkEnabled.Set(1)
		logger.Info("interaction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaEventsTopic)
	} else {
		logger.Info("interaction events disabled")
	}

	dash := dashboard.New(cache, events, dashboard.OptionsFromConfig(cfg), logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, dash, checks, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := fetcher.Close(); err != nil {
		logger.Error("dataset fetcher close error", "error", err)
	}

	logger.Info("shutdown complete")
}
