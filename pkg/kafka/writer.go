package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

var (
	ErrNoBrokers      = errors.New("kafka brokers are required")
	errNotInitialized = errors.New("kafka writer not initialized")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type dialFunc func(ctx context.Context, network, address string) (*kafka.Conn, error)

// Writer publishes outbox messages to Kafka and implements outbox.Sink.
type Writer struct {
	brokers []string
	writer  messageWriter
	dial    dialFunc
	now     func() time.Time
}

var _ outbox.Sink = (*Writer)(nil)

// NewWriter builds a hash-balanced writer so one order's events land on one partition.
func NewWriter(cfg config.KafkaConfig) (*Writer, error) {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	return &Writer{
		brokers: brokers,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		dial: kafka.DialContext,
		now:  time.Now,
	}, nil
}

func (w *Writer) Publish(ctx context.Context, msg outbox.Message) error {
	if w == nil || w.writer == nil {
		return errNotInitialized
	}
	if strings.TrimSpace(msg.Topic) == "" {
		return errors.New("kafka topic is required")
	}
	if err := w.writer.WriteMessages(ctx, toKafkaMessage(msg, w.now().UTC())); err != nil {
		return fmt.Errorf("write to %s: %w", msg.Topic, err)
	}
	return nil
}

// Ping succeeds when any broker accepts a connection.
func (w *Writer) Ping(ctx context.Context) error {
	if w == nil || w.dial == nil {
		return errNotInitialized
	}
	var errs error
	for _, broker := range w.brokers {
		conn, err := w.dial(ctx, "tcp", broker)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("dial %s: %w", broker, err))
			continue
		}
		_ = conn.Close()
		return nil
	}
	return errs
}

func (w *Writer) Close() error {
	if w == nil || w.writer == nil {
		return nil
	}
	return w.writer.Close()
}

func toKafkaMessage(msg outbox.Message, at time.Time) kafka.Message {
	keys := make([]string, 0, len(msg.Attributes))
	for k := range msg.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(msg.Attributes[k])})
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     []byte(msg.Key),
		Value:   msg.Data,
		Headers: headers,
		Time:    at,
	}
}

func splitBrokers(raw []string) []string {
	brokers := []string{}
	for _, entry := range raw {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return brokers
}
