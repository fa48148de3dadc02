package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dhima/audit-store/internal/api/middleware"
	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/models"
	"github.com/dhima/audit-store/internal/storage"
	"github.com/dhima/audit-store/pkg/clock"
	"github.com/dhima/audit-store/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverNow = time.Date(2025, 11, 5, 10, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logging.NewNoOpLogger()
	store := storage.NewAuditStore(sqlx.NewDb(mockDB, storage.DriverMySQL), logger)
	svc := audit.NewServiceWithClock(store, nil, logger, clock.NewFixed(serverNow))
	cfg := config.App{APIPort: "0", Environment: "test", CORSOrigins: []string{"*"}}

	return NewServerWithService(cfg, logger, svc).Handler(), mock
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "flow-test")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuditFlow_WhenRecordListDelete_ThenHitsAuditTable(t *testing.T) {
	// Arrange
	h, mock := newTestServer(t)
	columns := []string{"auditid", "audittype", "auditscope", "createdat", "createdby", "klass", "uid", "code", "data"}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO audit`).
		WithArgs("UPDATE", "METADATA", serverNow, "admin", "org.hisp.dhis.dataelement.DataElement", "fbfJHSPpUQD", nil, `{"name":"ANC"}`).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT auditid, audittype, auditscope, createdat, createdby, klass, uid, code, data FROM audit`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(5), "UPDATE", "METADATA", serverNow, "admin", "org.hisp.dhis.dataelement.DataElement", "fbfJHSPpUQD", nil, `{"name":"ANC"}`))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM audit WHERE auditid = \?`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	created := send(h, http.MethodPost, "/api/v1/audits",
		`{"auditType":"UPDATE","auditScope":"METADATA","createdBy":"admin","klass":"org.hisp.dhis.dataelement.DataElement","uid":"fbfJHSPpUQD","data":{"name":"ANC"}}`)
	listed := send(h, http.MethodGet, "/api/v1/audits?auditType=READ", "")
	deleted := send(h, http.MethodDelete, "/api/v1/audits/5", "")

	// Assert
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.JSONEq(t, `{"data":{"id":5},"message":"audit recorded"}`, created.Body.String())
	assert.Equal(t, "flow-test", created.Header().Get(middleware.RequestIDHeader))

	require.Equal(t, http.StatusOK, listed.Code)
	var list struct {
		Data models.AuditListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(listed.Body.Bytes(), &list))
	require.Len(t, list.Data.Audits, 1)
	assert.Equal(t, models.AuditTypeUpdate, list.Data.Audits[0].AuditType)
	assert.Empty(t, list.Data.Audits[0].Code)

	assert.Equal(t, http.StatusNoContent, deleted.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditFlow_WhenStoredTypeUnknown_ThenListFailsAsCorrupt(t *testing.T) {
	// Arrange
	h, mock := newTestServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM audit`).
		WillReturnRows(sqlmock.NewRows([]string{"auditid", "audittype", "auditscope", "createdat", "createdby", "klass", "uid", "code", "data"}).
			AddRow(int64(1), "READ", "TRACKER", serverNow, nil, nil, nil, nil, nil).
			AddRow(int64(2), "ARCHIVE", "TRACKER", serverNow, nil, nil, nil, nil, nil))
	mock.ExpectRollback()

	// Act
	w := send(h, http.MethodGet, "/api/v1/audits", "")

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "stored audit data is corrupt")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditFlow_WhenStubOperationsCalled_ThenDatabaseUntouched(t *testing.T) {
	// Arrange
	h, mock := newTestServer(t)

	// Act
	count := send(h, http.MethodGet, "/api/v1/audits/count", "")
	batch := send(h, http.MethodPost, "/api/v1/audits/batch", `[{"auditType":"READ","auditScope":"AGGREGATE"}]`)
	purge := send(h, http.MethodDelete, "/api/v1/audits?auditScope=AGGREGATE", "")

	// Assert
	assert.JSONEq(t, `{"data":{"count":0}}`, count.Body.String())
	assert.Equal(t, http.StatusAccepted, batch.Code)
	assert.Equal(t, http.StatusNoContent, purge.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_WhenHealthRequested_ThenReportsService(t *testing.T) {
	h, _ := newTestServer(t)

	w := send(h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"audit-store"`)
}
