package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/dhima/audit-store/internal/scheduler"
	"github.com/dhima/audit-store/internal/storage"
	"github.com/dhima/audit-store/pkg/config"
	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.Environment, cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
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

	svc := audit.NewService(storage.NewAuditStore(db, logger), nil, logger)
	engine, err := scheduler.NewEngine(cfg.RetentionCron, cfg.RetentionDays, svc, logger)
	if err != nil {
		logger.Fatal("invalid retention configuration", zap.Error(err))
	}

	logger.Info("starting retention scheduler",
		zap.String("cron", cfg.RetentionCron),
		zap.Int("retention_days", cfg.RetentionDays))

	if err := engine.Run(ctx); err != nil {
		logger.Error("retention scheduler stopped", zap.Error(err))
	}
	stopMetrics()
	<-metricsDone
	_ = logging.SyncQuietly(logger)
}
