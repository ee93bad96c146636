package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/udite/city-telemetry/internal/alerting"
	"github.com/udite/city-telemetry/internal/history"
	"github.com/udite/city-telemetry/internal/metrics"
	"github.com/udite/city-telemetry/internal/pipeline"
	"github.com/udite/city-telemetry/internal/queue"
	"github.com/udite/city-telemetry/internal/statecache"
	"github.com/udite/city-telemetry/internal/storage"
	"github.com/udite/city-telemetry/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logConfig := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		logConfig = zap.NewDevelopmentConfig()
	}
	logger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("instance", uuid.New().String()))

	logger.Info("starting city telemetry ingest")

	db, err := storage.Connect(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("connected to database")

	var cache pipeline.LatestCache
	if cfg.Redis.Enabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		cache = statecache.New(redisClient)
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	topics := queue.Topics{Root: cfg.Kafka.TopicRoot, City: cfg.Kafka.City}

	// Creating topics doubles as the startup connectivity probe; an
	// unreachable broker is fatal.
	if err := queue.EnsureTopics(cfg.Kafka.Brokers, topics.All(),
		cfg.Kafka.NumPartitions, cfg.Kafka.ReplicationFactor); err != nil {
		logger.Fatal("failed to connect to broker", zap.Error(err))
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	listener := queue.NewListener(cfg.Kafka.Brokers, cfg.Kafka.GroupID,
		topics.AllInbound(), logger)
	defer listener.Close()
	logger.Info("transport ready",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.Strings("inbound", topics.AllInbound()))

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	writer := storage.NewWriter(db, cfg.Writer.BatchSize, cfg.Writer.FlushInterval, logger, m)
	writer.Start()

	store := history.NewStore()
	orchestrator := pipeline.New(pipeline.Config{
		Writer:    writer,
		History:   store,
		Evaluator: alerting.NewEvaluator(),
		Publisher: producer,
		Cache:     cache,
		Topics:    topics,
		Logger:    logger,
		Metrics:   m,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- listener.Run(ctx, orchestrator.Handle)
	}()

	logger.Info("pipeline running",
		zap.Int("batch_size", cfg.Writer.BatchSize),
		zap.Duration("flush_interval", cfg.Writer.FlushInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-runErr:
		if err != nil {
			logger.Error("consumer loop failed", zap.Error(err))
		}
	}

	// Shutdown order: stop consuming, then flush the writer so every
	// accepted insert is durable before the storage handle closes.
	cancel()
	listener.Close()

	if err := writer.Stop(); err != nil {
		logger.Error("final flush failed", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	stats := writer.Stats()
	logger.Info("stopped",
		zap.Uint64("inserted", stats.Inserted),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("commits", stats.Commits),
		zap.Int("sensors", store.Sensors()))
}
