package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/models"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	insertAuditQuery = `
		INSERT INTO audit (
			audittype, auditscope, createdat, createdby, klass, uid, code, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	deleteAuditQuery = `DELETE FROM audit WHERE auditid = ?`

	selectAuditsQuery = `
		SELECT auditid, audittype, auditscope, createdat, createdby, klass, uid, code, data
		FROM audit`
)

// AuditStore persists audit records in the audit table.
type AuditStore struct {
	db     *sqlx.DB
	logger logging.Logger
}

// NewAuditStore wires a connected database; pass the pool from Connect.
func NewAuditStore(db *sqlx.DB, logger logging.Logger) *AuditStore {
	return &AuditStore{
		db:     db,
		logger: logger.With(zap.String("component", "audit_store")),
	}
}

// auditRow mirrors one row of the audit table.
type auditRow struct {
	ID         int64          `db:"auditid"`
	AuditType  sql.NullString `db:"audittype"`
	AuditScope sql.NullString `db:"auditscope"`
	CreatedAt  sql.NullTime   `db:"createdat"`
	CreatedBy  sql.NullString `db:"createdby"`
	Klass      sql.NullString `db:"klass"`
	UID        sql.NullString `db:"uid"`
	Code       sql.NullString `db:"code"`
	Data       sql.NullString `db:"data"`
}

// Save inserts the audit and returns the identifier generated by the database.
// Any ID already set on the audit is ignored.
func (s *AuditStore) Save(ctx context.Context, audit *models.Audit) (int64, error) {
	args := []interface{}{
		string(audit.AuditType),
		string(audit.AuditScope),
		audit.CreatedAt,
		nullString(audit.CreatedBy),
		nullString(audit.Klass),
		nullString(audit.UID),
		nullString(audit.Code),
		nullString(audit.Data),
	}

	var id int64
	err := s.withTx(ctx, false, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertReturningID(ctx, tx, args)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save audit: %w", err)
	}

	return id, nil
}

// insertReturningID picks the generated-key mechanism for the connected dialect.
func insertReturningID(ctx context.Context, tx *sqlx.Tx, args []interface{}) (int64, error) {
	if sqlx.BindType(tx.DriverName()) == sqlx.DOLLAR {
		var id int64
		query := tx.Rebind(insertAuditQuery + " RETURNING auditid")
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(insertAuditQuery), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// SaveAll does not persist anything. Batch inserts were never implemented for this
// table; callers that need every record stored must use Save.
func (s *AuditStore) SaveAll(ctx context.Context, audits []models.Audit) error {
	if len(audits) > 0 {
		logging.FromContext(ctx, s.logger).Warn("batch save is not supported, audits discarded",
			zap.Int("discarded", len(audits)))
	}
	return nil
}

// Delete removes the row whose auditid matches the audit's ID.
func (s *AuditStore) Delete(ctx context.Context, audit *models.Audit) error {
	logging.FromContext(ctx, s.logger).Info("deleting audit", zap.Int64("audit_id", audit.ID))

	err := s.withTx(ctx, false, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(deleteAuditQuery), audit.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete audit %d: %w", audit.ID, err)
	}

	return nil
}

// DeleteByQuery is a placeholder: the criteria are never applied and no rows are removed.
func (s *AuditStore) DeleteByQuery(ctx context.Context, query models.AuditQuery) error {
	return nil
}

// Count is a placeholder that reports zero whatever the criteria.
func (s *AuditStore) Count(ctx context.Context, query models.AuditQuery) (int, error) {
	return 0, nil
}

// Query returns every stored audit. The criteria are not applied.
// A row with an unrecognised type or scope fails the whole read with a *DecodeError.
func (s *AuditStore) Query(ctx context.Context, query models.AuditQuery) ([]models.Audit, error) {
	if !query.IsEmpty() {
		s.logger.Debug("audit query criteria are not applied")
	}

	audits := []models.Audit{}
	err := s.withTx(ctx, true, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, tx.Rebind(selectAuditsQuery))
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var row auditRow
			if err := rows.StructScan(&row); err != nil {
				return fmt.Errorf("failed to scan audit: %w", err)
			}
			audit, err := row.decode()
			if err != nil {
				return err
			}
			audits = append(audits, audit)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}

	return audits, nil
}

func (r auditRow) decode() (models.Audit, error) {
	if !r.AuditType.Valid {
		return models.Audit{}, &DecodeError{AuditID: r.ID, Column: "audittype", Err: fmt.Errorf("%w: NULL", models.ErrUnknownAuditType)}
	}
	auditType, err := models.ParseAuditType(r.AuditType.String)
	if err != nil {
		return models.Audit{}, &DecodeError{AuditID: r.ID, Column: "audittype", Value: r.AuditType.String, Err: err}
	}

	if !r.AuditScope.Valid {
		return models.Audit{}, &DecodeError{AuditID: r.ID, Column: "auditscope", Err: fmt.Errorf("%w: NULL", models.ErrUnknownAuditScope)}
	}
	auditScope, err := models.ParseAuditScope(r.AuditScope.String)
	if err != nil {
		return models.Audit{}, &DecodeError{AuditID: r.ID, Column: "auditscope", Value: r.AuditScope.String, Err: err}
	}

	var createdAt time.Time
	if r.CreatedAt.Valid {
		createdAt = r.CreatedAt.Time
	}

	return models.Audit{
		ID:         r.ID,
		AuditType:  auditType,
		AuditScope: auditScope,
		CreatedAt:  createdAt,
		CreatedBy:  r.CreatedBy.String,
		Klass:      r.Klass.String,
		UID:        r.UID.String,
		Code:       r.Code.String,
		Data:       r.Data.String,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
