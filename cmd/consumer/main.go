package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/events"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/dhima/audit-store/internal/storage"
	"github.com/dhima/audit-store/pkg/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("audit consumer stopped: %v", err)
	}
}

func run() error {
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := storage.Connect(connectCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}
	defer db.Close()

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	metricsDone := make(chan struct{})
	go func() {
		defer close(metricsDone)
		if err := metrics.ListenAndServe(metricsCtx, ":"+cfg.MetricsPort, logger); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	defer func() {
		stopMetrics()
		<-metricsDone
	}()

	svc := audit.NewService(storage.NewAuditStore(db, logger), nil, logger)
	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaAuditTopic, cfg.KafkaConsumerGroup, svc, logger)
	defer consumer.Close()

	logger.Info("starting audit consumer",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaAuditTopic),
		zap.String("group", cfg.KafkaConsumerGroup))

	runErr := consumer.Run(ctx)
	if runErr != nil {
		logger.Error("audit consumer stopped", zap.Error(runErr))
	}
	_ = logging.SyncQuietly(logger)
	return runErr
}
