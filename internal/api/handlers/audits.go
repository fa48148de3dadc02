package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dhima/audit-store/internal/api/response"
	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/models"
	"github.com/dhima/audit-store/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditService is the audit operations exposed over HTTP. Implemented by audit.Service.
type AuditService interface {
	Record(ctx context.Context, audit *models.Audit) (int64, error)
	RecordAll(ctx context.Context, audits []models.Audit) error
	Enqueue(ctx context.Context, audit *models.Audit) error
	Remove(ctx context.Context, audit *models.Audit) error
	RemoveMatching(ctx context.Context, query models.AuditQuery) error
	Count(ctx context.Context, query models.AuditQuery) (int, error)
	Query(ctx context.Context, query models.AuditQuery) ([]models.Audit, error)
}

// AuditHandler handles audit ingest, query and removal requests.
type AuditHandler struct {
	logger  logging.Logger
	service AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(logger logging.Logger, service AuditService) *AuditHandler {
	return &AuditHandler{
		logger:  logger.With(zap.String("handler", "audit")),
		service: service,
	}
}

// CreateAudit godoc
// @Summary Record an audit
// @Description Validates and stores one audit, returning its generated id. With async=true the audit is published to the ingest topic instead and stored by the consumer.
// @Tags Audits
// @Accept json
// @Produce json
// @Param audit body models.Audit true "Audit document (id is ignored)"
// @Param async query bool false "Publish to Kafka instead of storing synchronously"
// @Success 201 {object} models.CreateAuditResponse
// @Success 202 {object} response.SuccessResponse "Audit queued"
// @Failure 400 {object} response.ErrorResponse "Invalid audit document"
// @Failure 503 {object} response.ErrorResponse "Asynchronous ingest not configured"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits [post]
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read request body", err.Error())
		return
	}

	a, err := audit.DecodeDocument(raw)
	if err != nil {
		h.respondDocumentError(c, err)
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		err := h.service.Enqueue(c.Request.Context(), a)
		if errors.Is(err, audit.ErrPublisherUnavailable) {
			response.ServiceUnavailable(c, "asynchronous ingest is not configured")
			return
		}
		if h.handleServiceError(c, err, "enqueue audit") {
			return
		}
		response.Accepted(c, "audit queued")
		return
	}

	id, err := h.service.Record(c.Request.Context(), a)
	if h.handleServiceError(c, err, "record audit") {
		return
	}

	h.logger.Info("audit recorded",
		zap.Int64("audit_id", id),
		zap.String("audit_type", string(a.AuditType)),
		zap.String("request_id", response.GetRequestID(c)),
	)

	response.Created(c, models.CreateAuditResponse{ID: id}, "audit recorded")
}

// CreateAuditBatch godoc
// @Summary Record a batch of audits
// @Description Validates every document and hands the batch to the store's batch save. Batch save does not persist anything yet; the response is 202 so callers do not assume durability.
// @Tags Audits
// @Accept json
// @Produce json
// @Param audits body []models.Audit true "Audit documents"
// @Success 202 {object} response.SuccessResponse "Batch accepted"
// @Failure 400 {object} response.ErrorResponse "Invalid audit document"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits/batch [post]
func (h *AuditHandler) CreateAuditBatch(c *gin.Context) {
	var docs []json.RawMessage
	if err := c.ShouldBindJSON(&docs); err != nil {
		response.BadRequest(c, "request body must be a JSON array of audits", err.Error())
		return
	}

	audits := make([]models.Audit, 0, len(docs))
	var problems []response.ValidationError
	for i, doc := range docs {
		a, err := audit.DecodeDocument(doc)
		if err != nil {
			problems = append(problems, documentProblems(err, fmt.Sprintf("[%d].", i))...)
			continue
		}
		audits = append(audits, *a)
	}
	if len(problems) > 0 {
		response.ValidationErrors(c, problems)
		return
	}

	if h.handleServiceError(c, h.service.RecordAll(c.Request.Context(), audits), "record audit batch") {
		return
	}

	response.Accepted(c, "batch accepted")
}

// ListAudits godoc
// @Summary List audits
// @Description Returns stored audits. Filter parameters are validated but not applied yet; every stored audit is returned.
// @Tags Audits
// @Produce json
// @Param auditType query []string false "Audit types" collectionFormat(multi) Enums(READ, CREATE, UPDATE, DELETE, SEARCH, SECURITY)
// @Param auditScope query []string false "Audit scopes" collectionFormat(multi) Enums(METADATA, TRACKER, AGGREGATE)
// @Param klass query []string false "Audited classes" collectionFormat(multi)
// @Param uid query []string false "Object uids" collectionFormat(multi)
// @Param code query []string false "Object codes" collectionFormat(multi)
// @Param from query string false "Created at or after (RFC3339)"
// @Param to query string false "Created at or before (RFC3339)"
// @Success 200 {object} models.AuditListResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits [get]
func (h *AuditHandler) ListAudits(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	audits, err := h.service.Query(c.Request.Context(), query)
	if h.handleServiceError(c, err, "list audits") {
		return
	}

	response.OK(c, models.AuditListResponse{Audits: audits, Total: len(audits)})
}

// CountAudits godoc
// @Summary Count audits
// @Description Counting is not implemented by the store and always reports 0.
// @Tags Audits
// @Produce json
// @Param auditType query []string false "Audit types" collectionFormat(multi)
// @Param auditScope query []string false "Audit scopes" collectionFormat(multi)
// @Success 200 {object} models.AuditCountResponse
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits/count [get]
func (h *AuditHandler) CountAudits(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	count, err := h.service.Count(c.Request.Context(), query)
	if h.handleServiceError(c, err, "count audits") {
		return
	}

	response.OK(c, models.AuditCountResponse{Count: count})
}

// DeleteAudit godoc
// @Summary Delete an audit
// @Description Deletes the audit with the given id. Deleting an unknown id succeeds.
// @Tags Audits
// @Produce json
// @Param id path int true "Audit ID"
// @Success 204 "Audit deleted"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits/{id} [delete]
func (h *AuditHandler) DeleteAudit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "audit id must be a positive integer", c.Param("id"))
		return
	}

	if h.handleServiceError(c, h.service.Remove(c.Request.Context(), &models.Audit{ID: id}), "delete audit") {
		return
	}

	response.NoContent(c)
}

// DeleteAudits godoc
// @Summary Delete audits matching criteria
// @Description Criteria deletion is not implemented by the store; nothing is removed.
// @Tags Audits
// @Produce json
// @Param auditType query []string false "Audit types" collectionFormat(multi)
// @Param auditScope query []string false "Audit scopes" collectionFormat(multi)
// @Param uid query []string false "Object uids" collectionFormat(multi)
// @Success 204 "Request accepted"
// @Failure 400 {object} response.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /audits [delete]
func (h *AuditHandler) DeleteAudits(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	if h.handleServiceError(c, h.service.RemoveMatching(c.Request.Context(), query), "delete audits") {
		return
	}

	response.NoContent(c)
}

func (h *AuditHandler) bindQuery(c *gin.Context) (models.AuditQuery, bool) {
	var query models.ListAuditsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("invalid audit query",
			zap.Error(err),
			zap.String("request_id", response.GetRequestID(c)),
		)
		response.BadRequest(c, "invalid query parameters", err.Error())
		return models.AuditQuery{}, false
	}
	return query.ToAuditQuery(), true
}

func (h *AuditHandler) respondDocumentError(c *gin.Context, err error) {
	h.logger.Warn("invalid audit document",
		zap.Error(err),
		zap.String("request_id", response.GetRequestID(c)),
	)
	response.ValidationErrors(c, documentProblems(err, ""))
}

func documentProblems(err error, prefix string) []response.ValidationError {
	var docErr *audit.DocumentError
	if !errors.As(err, &docErr) {
		return []response.ValidationError{{Field: prefix + "(root)", Message: err.Error()}}
	}
	out := make([]response.ValidationError, len(docErr.Problems))
	for i, p := range docErr.Problems {
		out[i] = response.ValidationError{Field: prefix + p.Field, Message: p.Message}
	}
	return out
}

func (h *AuditHandler) handleServiceError(c *gin.Context, err error, operation string) bool {
	if err == nil {
		return false
	}

	h.logger.Error(operation+" failed",
		zap.Error(err),
		zap.String("request_id", response.GetRequestID(c)),
	)
	if errors.Is(err, storage.ErrCorruptRecord) {
		response.Error(c, http.StatusInternalServerError, "stored audit data is corrupt", err.Error())
		return true
	}
	response.InternalServerError(c, "internal server error")
	return true
}
