package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dhima/audit-store/internal/models"
	"github.com/segmentio/kafka-go"
)

// AuditMessage is the JSON body written to the ingest topic. Its shape matches the
// audit document accepted by the consumer.
type AuditMessage struct {
	AuditType  string    `json:"auditType"`
	AuditScope string    `json:"auditScope"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	Klass      string    `json:"klass,omitempty"`
	UID        string    `json:"uid,omitempty"`
	Code       string    `json:"code,omitempty"`
	Data       string    `json:"data,omitempty"`
}

// NewAuditMessage copies an audit into its wire form.
func NewAuditMessage(a models.Audit) AuditMessage {
	return AuditMessage{
		AuditType:  string(a.AuditType),
		AuditScope: string(a.AuditScope),
		CreatedAt:  a.CreatedAt.UTC(),
		CreatedBy:  a.CreatedBy,
		Klass:      a.Klass,
		UID:        a.UID,
		Code:       a.Code,
		Data:       a.Data,
	}
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits audits to Kafka for asynchronous persistence.
type Publisher struct {
	writer MessageWriter
}

// NewPublisher builds a publisher writing to topic on the given brokers.
// Messages are keyed by target so audits of one object stay ordered.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: false,
	})
}

// NewPublisherWithWriter wires a custom writer; used by tests.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w}
}

// Publish writes one audit message and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, audit models.Audit) error {
	body, err := json.Marshal(NewAuditMessage(audit))
	if err != nil {
		return fmt.Errorf("failed to marshal audit message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(audit.Klass + ":" + audit.UID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "audit-scope", Value: []byte(audit.AuditScope)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write audit message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
