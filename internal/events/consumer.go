package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhima/audit-store/internal/audit"
	"github.com/dhima/audit-store/internal/logging"
	"github.com/dhima/audit-store/internal/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads audit documents from the ingest topic and records them.
// Offsets are committed only after the audit is stored, so delivery is at-least-once.
type Consumer struct {
	reader   MessageReader
	recorder Recorder
	logger   logging.Logger
}

// NewConsumer joins group on topic using the given brokers.
func NewConsumer(brokers []string, topic, group string, recorder Recorder, logger logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        group,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
		StartOffset:    kafka.FirstOffset,
	})
	return NewConsumerWithReader(reader, recorder, logger)
}

// NewConsumerWithReader wires a custom reader; used by tests.
func NewConsumerWithReader(reader MessageReader, recorder Recorder, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		recorder: recorder,
		logger:   logger.With(zap.String("component", "audit_consumer")),
	}
}

// Run consumes until ctx is cancelled or a message cannot be stored.
// Undecodable messages are logged and committed so they do not block the partition.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("audit consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("audit consumer stopped")
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	fields := []zap.Field{
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	}

	decoded, err := audit.DecodeDocument(msg.Value)
	if err != nil {
		metrics.ConsumerMessagesTotal.WithLabelValues("skipped").Inc()
		c.logger.Warn("skipping undecodable audit message", append(fields, zap.Error(err))...)
		return nil
	}

	id, err := c.recorder.Record(ctx, decoded)
	if err != nil {
		metrics.ConsumerMessagesTotal.WithLabelValues("failed").Inc()
		c.logger.Error("failed to record audit message", append(fields, zap.Error(err))...)
		return fmt.Errorf("failed to record message at offset %d: %w", msg.Offset, err)
	}

	metrics.ConsumerMessagesTotal.WithLabelValues("recorded").Inc()
	c.logger.Debug("audit message recorded", append(fields, zap.Int64("audit_id", id))...)
	return nil
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
