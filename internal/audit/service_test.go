package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/models"
	"github.com/dhima/audit-store/internal/testutil/fakes"
	"github.com/dhima/audit-store/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)

func newTestService(store Store, pub Publisher) *Service {
	return NewServiceWithClock(store, pub, logging.NewNoOpLogger(), clock.NewFixed(fixedNow))
}

func metadataAudit(uid string) *models.Audit {
	return &models.Audit{
		AuditType:  models.AuditTypeUpdate,
		AuditScope: models.AuditScopeMetadata,
		CreatedBy:  "admin",
		Klass:      "org.hisp.dhis.dataelement.DataElement",
		UID:        uid,
		Code:       "DE_" + uid,
		Data:       `{"uid":"` + uid + `"}`,
	}
}

func TestRecord_WhenSaved_ThenRoundTripsThroughQuery(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	in := metadataAudit("fbfJHSPpUQD")

	// Act
	id, err := svc.Record(context.Background(), in)
	require.NoError(t, err)
	audits, err := svc.Query(context.Background(), models.AuditQuery{})

	// Assert
	require.NoError(t, err)
	assert.Positive(t, id)
	require.Len(t, audits, 1)
	got := audits[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, in.AuditType, got.AuditType)
	assert.Equal(t, in.AuditScope, got.AuditScope)
	assert.Equal(t, in.Klass, got.Klass)
	assert.Equal(t, in.UID, got.UID)
	assert.Equal(t, in.Code, got.Code)
	assert.Equal(t, in.Data, got.Data)
}

func TestRecord_WhenCreatedAtZero_ThenStampsClockTime(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	in := metadataAudit("a")

	// Act
	id, err := svc.Record(context.Background(), in)

	// Assert
	require.NoError(t, err)
	stored, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, stored.CreatedAt)
	assert.True(t, in.CreatedAt.IsZero(), "caller's audit must not be mutated")
}

func TestRecord_WhenCreatedAtSet_ThenKeepsIt(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	in := metadataAudit("a")
	in.CreatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Act
	id, err := svc.Record(context.Background(), in)

	// Assert
	require.NoError(t, err)
	stored, _ := store.Get(id)
	assert.Equal(t, in.CreatedAt, stored.CreatedAt)
}

func TestRecord_WhenStoreFails_ThenReturnsWrappedError(t *testing.T) {
	// Arrange
	storeErr := errors.New("deadlock")
	store := fakes.NewFakeAuditStore()
	store.FailNext, store.FailError = true, storeErr
	svc := newTestService(store, nil)

	// Act
	id, err := svc.Record(context.Background(), metadataAudit("a"))

	// Assert
	assert.ErrorIs(t, err, storeErr)
	assert.Zero(t, id)
}

func TestRecordAndQuery_WhenRequestIDInContext_ThenDebugLogsCarryIt(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.DebugLevel)
	svc := NewServiceWithClock(fakes.NewFakeAuditStore(), nil, logging.NewFromZap(zap.New(core)), clock.NewFixed(fixedNow))
	ctx := logging.ContextWithRequestID(context.Background(), "req-7")

	// Act
	_, err := svc.Record(ctx, metadataAudit("fbfJHSPpUQD"))
	require.NoError(t, err)
	_, err = svc.Query(ctx, models.AuditQuery{})
	require.NoError(t, err)

	// Assert
	for _, msg := range []string{"audit recorded", "queried audits"} {
		entries := logs.FilterMessage(msg).All()
		if assert.Len(t, entries, 1, msg) {
			assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"], msg)
		}
	}
}

func TestRecordAll_WhenCalled_ThenNothingIsPersisted(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)

	// Act
	err := svc.RecordAll(context.Background(), []models.Audit{*metadataAudit("a"), *metadataAudit("b")})

	// Assert: batch save is a known gap.
	require.NoError(t, err)
	assert.Zero(t, store.Len())
}

func TestRemove_WhenSeveralStored_ThenRemovesOnlyMatchingID(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	id1, _ := svc.Record(context.Background(), metadataAudit("a"))
	id2, _ := svc.Record(context.Background(), metadataAudit("b"))
	id3, _ := svc.Record(context.Background(), metadataAudit("c"))

	// Act
	err := svc.Remove(context.Background(), &models.Audit{ID: id2})

	// Assert
	require.NoError(t, err)
	audits, _ := svc.Query(context.Background(), models.AuditQuery{})
	require.Len(t, audits, 2)
	assert.Equal(t, id1, audits[0].ID)
	assert.Equal(t, id3, audits[1].ID)
}

func TestRemoveMatching_WhenCriteriaMatch_ThenNothingIsRemoved(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	_, _ = svc.Record(context.Background(), metadataAudit("a"))

	// Act
	err := svc.RemoveMatching(context.Background(), models.AuditQuery{UIDs: []string{"a"}})

	// Assert: criteria delete is a known gap.
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestCountAndQuery_WhenCriteriaVary_ThenResultsDoNotChange(t *testing.T) {
	// Known gap: criteria are ignored by count and query.
	store := fakes.NewFakeAuditStore()
	svc := newTestService(store, nil)
	_, _ = svc.Record(context.Background(), metadataAudit("a"))
	tracker := metadataAudit("b")
	tracker.AuditScope = models.AuditScopeTracker
	_, _ = svc.Record(context.Background(), tracker)

	from := fixedNow.Add(time.Hour)
	criteria := []models.AuditQuery{
		{},
		{AuditScopes: []models.AuditScope{models.AuditScopeTracker}},
		{UIDs: []string{"does-not-exist"}},
		{Range: models.Range{From: &from}},
	}

	for _, q := range criteria {
		count, err := svc.Count(context.Background(), q)
		require.NoError(t, err)
		assert.Zero(t, count)

		audits, err := svc.Query(context.Background(), q)
		require.NoError(t, err)
		assert.Len(t, audits, 2)
	}
}

func TestEnqueue_WhenPublisherConfigured_ThenPublishesStampedAudit(t *testing.T) {
	// Arrange
	store := fakes.NewFakeAuditStore()
	pub := &fakes.FakePublisher{}
	svc := newTestService(store, pub)

	// Act
	err := svc.Enqueue(context.Background(), metadataAudit("a"))

	// Assert
	require.NoError(t, err)
	require.Len(t, pub.Audits, 1)
	assert.Equal(t, fixedNow, pub.Audits[0].CreatedAt)
	assert.Zero(t, store.Len(), "enqueue must not write to the store")
}

func TestEnqueue_WhenPublisherFails_ThenReturnsError(t *testing.T) {
	// Arrange
	pub := &fakes.FakePublisher{FailNext: true}
	svc := newTestService(fakes.NewFakeAuditStore(), pub)

	// Act
	err := svc.Enqueue(context.Background(), metadataAudit("a"))

	// Assert
	assert.ErrorContains(t, err, "failed to publish audit")
}

func TestEnqueue_WhenNoPublisher_ThenReturnsUnavailable(t *testing.T) {
	svc := newTestService(fakes.NewFakeAuditStore(), nil)

	err := svc.Enqueue(context.Background(), metadataAudit("a"))

	assert.ErrorIs(t, err, ErrPublisherUnavailable)
}
