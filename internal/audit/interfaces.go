package audit

import (
	"context"

	"github.com/dhima/audit-store/internal/models"
)

// Store defines the persistence required by the audit Service.
type Store interface {
	Save(ctx context.Context, audit *models.Audit) (int64, error)
	SaveAll(ctx context.Context, audits []models.Audit) error
	Delete(ctx context.Context, audit *models.Audit) error
	DeleteByQuery(ctx context.Context, query models.AuditQuery) error
	Count(ctx context.Context, query models.AuditQuery) (int, error)
	Query(ctx context.Context, query models.AuditQuery) ([]models.Audit, error)
}

// Publisher abstracts the Kafka publisher for testability.
type Publisher interface {
	Publish(ctx context.Context, audit models.Audit) error
}
