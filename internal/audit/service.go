package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/dhima/audit-store/internal/models"
	"github.com/dhima/audit-store/pkg/clock"
	"go.uber.org/zap"
)

// ErrPublisherUnavailable is returned by Enqueue when no Kafka publisher is configured.
var ErrPublisherUnavailable = errors.New("asynchronous audit publishing is not configured")

// Service records, reads and removes audits on top of a Store.
type Service struct {
	store     Store
	publisher Publisher
	logger    logging.Logger
	clock     clock.Clock
}

// NewService creates a Service using the real clock. publisher may be nil.
func NewService(store Store, publisher Publisher, logger logging.Logger) *Service {
	return NewServiceWithClock(store, publisher, logger, clock.RealClock{})
}

// NewServiceWithClock allows injecting a clock for deterministic tests.
func NewServiceWithClock(store Store, publisher Publisher, logger logging.Logger, clk clock.Clock) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "audit_service")),
		clock:     clk,
	}
}

// Record persists a single audit and returns its generated id.
// A zero CreatedAt is stamped with the current time.
func (s *Service) Record(ctx context.Context, audit *models.Audit) (int64, error) {
	stamped := s.stamp(*audit)

	id, err := s.store.Save(ctx, &stamped)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("save").Inc()
		logging.FromContext(ctx, s.logger).Error("failed to record audit",
			zap.String("audit_type", string(stamped.AuditType)),
			zap.String("klass", stamped.Klass),
			zap.String("uid", stamped.UID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to record audit: %w", err)
	}

	metrics.AuditsSavedTotal.WithLabelValues(string(stamped.AuditScope)).Inc()
	logging.FromContext(ctx, s.logger).Debug("audit recorded",
		zap.Int64("audit_id", id),
		zap.String("audit_type", string(stamped.AuditType)),
		zap.String("audit_scope", string(stamped.AuditScope)))

	return id, nil
}

// RecordAll hands the batch to the store's batch save, which currently persists nothing.
func (s *Service) RecordAll(ctx context.Context, audits []models.Audit) error {
	stamped := make([]models.Audit, len(audits))
	for i, a := range audits {
		stamped[i] = s.stamp(a)
	}

	if err := s.store.SaveAll(ctx, stamped); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("save_all").Inc()
		return fmt.Errorf("failed to record audits: %w", err)
	}

	metrics.AuditsDiscardedTotal.Add(float64(len(stamped)))
	return nil
}

// Enqueue publishes the audit for asynchronous persistence by the ingest consumer.
func (s *Service) Enqueue(ctx context.Context, audit *models.Audit) error {
	if s.publisher == nil {
		return ErrPublisherUnavailable
	}

	stamped := s.stamp(*audit)
	if err := s.publisher.Publish(ctx, stamped); err != nil {
		logging.FromContext(ctx, s.logger).Error("failed to publish audit",
			zap.String("klass", stamped.Klass),
			zap.String("uid", stamped.UID),
			zap.Error(err))
		return fmt.Errorf("failed to publish audit: %w", err)
	}

	metrics.AuditsEnqueuedTotal.Inc()
	return nil
}

// Remove deletes the stored audit with the same id.
func (s *Service) Remove(ctx context.Context, audit *models.Audit) error {
	if err := s.store.Delete(ctx, audit); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("delete").Inc()
		logging.FromContext(ctx, s.logger).Error("failed to remove audit", zap.Int64("audit_id", audit.ID), zap.Error(err))
		return fmt.Errorf("failed to remove audit: %w", err)
	}

	metrics.AuditsDeletedTotal.Inc()
	return nil
}

// RemoveMatching delegates to the store's criteria delete, which currently removes nothing.
func (s *Service) RemoveMatching(ctx context.Context, query models.AuditQuery) error {
	if err := s.store.DeleteByQuery(ctx, query); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("delete_by_query").Inc()
		return fmt.Errorf("failed to remove audits: %w", err)
	}
	return nil
}

// Count reports the store's count for the criteria.
func (s *Service) Count(ctx context.Context, query models.AuditQuery) (int, error) {
	count, err := s.store.Count(ctx, query)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("count").Inc()
		return 0, fmt.Errorf("failed to count audits: %w", err)
	}
	return count, nil
}

// Query returns the audits the store yields for the criteria.
func (s *Service) Query(ctx context.Context, query models.AuditQuery) ([]models.Audit, error) {
	audits, err := s.store.Query(ctx, query)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("query").Inc()
		logging.FromContext(ctx, s.logger).Error("failed to query audits", zap.Error(err))
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}

	logging.FromContext(ctx, s.logger).Debug("queried audits", zap.Int("count", len(audits)))
	return audits, nil
}

func (s *Service) stamp(a models.Audit) models.Audit {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock.Now()
	}
	return a
}
