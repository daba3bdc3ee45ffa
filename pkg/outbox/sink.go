package outbox

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Message is a broker-agnostic outbox delivery.
type Message struct {
	Topic      string
	Key        string
	Data       []byte
	Attributes map[string]string
}

// Sink delivers outbox messages to a broker. Publish blocks until the broker acknowledges.
type Sink interface {
	Publish(ctx context.Context, msg Message) error
	Ping(ctx context.Context) error
	Close() error
}

// NewMessage builds the delivery for an outbox row. The aggregate id is the
// partition key so every event of one order stays ordered.
func NewMessage(topic string, event models.OutboxEvent, eventID string) Message {
	return Message{
		Topic: topic,
		Key:   event.AggregateID.String(),
		Data:  event.Payload,
		Attributes: map[string]string{
			"event_id":       eventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}
