package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func newTestWriter(rec *recordingWriter) *Writer {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Writer{
		brokers: []string{"localhost:9092"},
		writer:  rec,
		now:     func() time.Time { return at },
	}
}

func TestNewWriterRequiresBrokers(t *testing.T) {
	_, err := NewWriter(config.KafkaConfig{Brokers: []string{" ", ""}})
	assert.ErrorIs(t, err, ErrNoBrokers)

	w, err := NewWriter(config.KafkaConfig{Brokers: []string{"a:9092, b:9092"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, w.brokers)
}

func TestPublishMapsMessage(t *testing.T) {
	rec := &recordingWriter{}
	w := newTestWriter(rec)

	err := w.Publish(context.Background(), outbox.Message{
		Topic:      "storefront.order-events",
		Key:        "order-1",
		Data:       []byte(`{"version":1}`),
		Attributes: map[string]string{"event_type": "order_placed", "aggregate_id": "order-1"},
	})
	require.NoError(t, err)
	require.Len(t, rec.messages, 1)

	msg := rec.messages[0]
	assert.Equal(t, "storefront.order-events", msg.Topic)
	assert.Equal(t, "order-1", string(msg.Key))
	assert.JSONEq(t, `{"version":1}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "aggregate_id", msg.Headers[0].Key)
	assert.Equal(t, "event_type", msg.Headers[1].Key)
	assert.Equal(t, "order_placed", string(msg.Headers[1].Value))
	assert.Equal(t, 2026, msg.Time.Year())
}

func TestPublishErrors(t *testing.T) {
	rec := &recordingWriter{err: errors.New("leader not available")}
	w := newTestWriter(rec)

	err := w.Publish(context.Background(), outbox.Message{Topic: "t", Key: "k"})
	assert.ErrorContains(t, err, "leader not available")

	assert.Error(t, w.Publish(context.Background(), outbox.Message{Key: "k"}))

	var nilWriter *Writer
	assert.ErrorIs(t, nilWriter.Publish(context.Background(), outbox.Message{Topic: "t"}), errNotInitialized)
}

func TestPingCollectsDialErrors(t *testing.T) {
	w := newTestWriter(&recordingWriter{})
	w.brokers = []string{"a:9092", "b:9092"}
	w.dial = func(context.Context, string, string) (*kafka.Conn, error) {
		return nil, errors.New("connection refused")
	}

	err := w.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial a:9092")
	assert.Contains(t, err.Error(), "dial b:9092")
}

func TestClose(t *testing.T) {
	rec := &recordingWriter{}
	require.NoError(t, newTestWriter(rec).Close())
	assert.True(t, rec.closed)
}
