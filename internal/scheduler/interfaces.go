package scheduler

import (
	"context"

	"github.com/dhima/audit-store/internal/models"
)

// AuditRemover is the part of the audit service the retention job needs.
type AuditRemover interface {
	Query(ctx context.Context, query models.AuditQuery) ([]models.Audit, error)
	Remove(ctx context.Context, audit *models.Audit) error
}
