package events

import (
	"context"

	"github.com/dhima/audit-store/internal/models"
	"github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Recorder persists decoded audits. Implemented by audit.Service.
type Recorder interface {
	Record(ctx context.Context, audit *models.Audit) (int64, error)
}
