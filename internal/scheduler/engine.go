package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/dhima/audit-store/internal/models"
	"github.com/dhima/audit-store/pkg/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Engine purges audits older than the retention window on a cron schedule.
type Engine struct {
	spec      string
	retention time.Duration
	audits    AuditRemover
	logger    logging.Logger
	clock     clock.Clock
}

// NewEngine constructs a retention engine. retentionDays of 0 disables purging.
func NewEngine(spec string, retentionDays int, audits AuditRemover, logger logging.Logger) (*Engine, error) {
	return NewEngineWithClock(spec, retentionDays, audits, logger, clock.RealClock{})
}

// NewEngineWithClock allows injecting a clock for deterministic tests.
func NewEngineWithClock(spec string, retentionDays int, audits AuditRemover, logger logging.Logger, clk clock.Clock) (*Engine, error) {
	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	if retentionDays < 0 {
		return nil, fmt.Errorf("retention days must not be negative, got %d", retentionDays)
	}
	return &Engine{
		spec:      spec,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		audits:    audits,
		logger:    logger.With(zap.String("component", "retention")),
		clock:     clk,
	}, nil
}

// Enabled reports whether a retention window is configured.
func (e *Engine) Enabled() bool {
	return e.retention > 0
}

// Purge removes every audit created before now minus the retention window and
// returns how many were removed. Audits without a creation time are kept.
// Removal stops at the first failure.
func (e *Engine) Purge(ctx context.Context) (int, error) {
	if !e.Enabled() {
		return 0, nil
	}
	cutoff := e.clock.Now().Add(-e.retention)

	audits, err := e.audits.Query(ctx, models.AuditQuery{})
	if err != nil {
		return 0, fmt.Errorf("failed to load audits for retention: %w", err)
	}

	removed := 0
	for i := range audits {
		a := &audits[i]
		if a.CreatedAt.IsZero() || !a.CreatedAt.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := e.audits.Remove(ctx, a); err != nil {
			return removed, fmt.Errorf("failed to purge audit %d: %w", a.ID, err)
		}
		removed++
		metrics.RetentionDeletedTotal.Inc()
	}

	e.logger.Info("retention purge finished",
		zap.Time("cutoff", cutoff),
		zap.Int("scanned", len(audits)),
		zap.Int("removed", removed))
	return removed, nil
}

// Run schedules Purge and blocks until ctx is cancelled, then waits for a running purge to finish.
func (e *Engine) Run(ctx context.Context) error {
	if !e.Enabled() {
		e.logger.Info("retention disabled, scheduler idle")
		<-ctx.Done()
		return nil
	}

	cl := cronLogger{logger: e.logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(e.spec, func() { e.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule retention: %w", err)
	}

	c.Start()
	e.logNextRun()

	<-ctx.Done()
	<-c.Stop().Done()
	e.logger.Info("retention scheduler stopped")
	return nil
}

func (e *Engine) runOnce(ctx context.Context) {
	if _, err := e.Purge(ctx); err != nil {
		e.logger.Error("retention purge failed", zap.Error(err))
	}
	e.logNextRun()
}

func (e *Engine) logNextRun() {
	next, err := NextRun(e.spec, e.clock.Now())
	if err != nil {
		return
	}
	e.logger.Info("next retention run", zap.Time("at", next))
}
