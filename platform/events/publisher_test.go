package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dhima/audit-store/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed int
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed++
	return nil
}

func TestNewPublisher_WhenCreated_ThenHasProductionSettings(t *testing.T) {
	// Act
	publisher := NewPublisher([]string{"broker1:9092", "broker2:9092"}, "audit.ingest")

	// Assert
	writer, ok := publisher.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "audit.ingest", writer.Topic)
	assert.Equal(t, kafka.RequireAll, writer.RequiredAcks)
	assert.Equal(t, 3, writer.MaxAttempts)
	assert.Equal(t, 10*time.Second, writer.WriteTimeout)
	assert.IsType(t, &kafka.Hash{}, writer.Balancer)
}

func TestPublish_WhenAuditValid_ThenWritesKeyedJSONMessage(t *testing.T) {
	// Arrange
	writer := &recordingWriter{}
	publisher := NewPublisherWithWriter(writer)
	audit := models.Audit{
		ID:         99,
		AuditType:  models.AuditTypeDelete,
		AuditScope: models.AuditScopeAggregate,
		CreatedAt:  time.Date(2025, 11, 6, 10, 30, 0, 0, time.UTC),
		CreatedBy:  "admin",
		Klass:      "org.hisp.dhis.datavalue.DataValue",
		UID:        "abc123",
		Data:       `{"value":"12"}`,
	}

	// Act
	err := publisher.Publish(context.Background(), audit)

	// Assert
	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "org.hisp.dhis.datavalue.DataValue:abc123", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "audit-scope", Value: []byte("AGGREGATE")}}, msg.Headers)

	var body AuditMessage
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, NewAuditMessage(audit), body)
	assert.NotContains(t, string(msg.Value), `"id"`)
	assert.NotContains(t, string(msg.Value), `"code"`)
}

func TestPublish_WhenWriterFails_ThenReturnsWrappedError(t *testing.T) {
	// Arrange
	writeErr := errors.New("leader not available")
	publisher := NewPublisherWithWriter(&recordingWriter{err: writeErr})

	// Act
	err := publisher.Publish(context.Background(), models.Audit{AuditType: models.AuditTypeRead})

	// Assert
	assert.ErrorIs(t, err, writeErr)
	assert.ErrorContains(t, err, "failed to write audit message")
}

func TestClose_WhenCalled_ThenClosesWriter(t *testing.T) {
	writer := &recordingWriter{}

	require.NoError(t, NewPublisherWithWriter(writer).Close())

	assert.Equal(t, 1, writer.closed)
}
