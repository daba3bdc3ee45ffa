package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterStore interface {
	ParkTx(tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type deliveryMetrics interface {
	IncPublished(eventType string)
	IncFailed(eventType string)
	IncDeadLettered(eventType string)
}

type noopMetrics struct{}

func (noopMetrics) IncPublished(string)    {}
func (noopMetrics) IncFailed(string)       {}
func (noopMetrics) IncDeadLettered(string) {}

type ServiceParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          dbClient
	Sink        outbox.Sink
	SinkName    string
	Repository  outboxRepository
	Registry    registryResolver
	DeadLetters deadLetterStore
	Metrics     deliveryMetrics
}

// Service drains outbox_events to the configured sink. Each batch runs in one
// transaction so row claims, publish marks and dead-lettering commit together.
type Service struct {
	logg        *logger.Logger
	db          dbClient
	repo        outboxRepository
	sink        outbox.Sink
	sinkName    string
	registry    registryResolver
	deadLetters deadLetterStore
	metrics     deliveryMetrics
	batchSize   int
	maxAttempts int
	pace        *pacer
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Sink == nil:
		return nil, errors.New("outbox sink is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	case params.DeadLetters == nil:
		return nil, errors.New("dead letter store is required")
	}

	cfg := params.Config.Outbox
	s := &Service{
		logg:        params.Logger,
		db:          params.DB,
		repo:        params.Repository,
		sink:        params.Sink,
		sinkName:    params.SinkName,
		registry:    params.Registry,
		deadLetters: params.DeadLetters,
		metrics:     params.Metrics,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.sinkName == "" {
		s.sinkName = cfg.Sink
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	poll := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = defaultPollInterval
	}
	s.pace = newPacer(poll, maxBackoff)
	return s, nil
}

// Run checks dependencies once and then drains until ctx ends. Empty polls
// wait one interval; failed batches back off exponentially.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := s.sink.Ping(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", s.sinkName, err)
	}

	for ctx.Err() == nil {
		handled, err := s.drain(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch_failed", err)
			wait = s.pace.failed()
		case handled > 0:
			s.pace.reset()
			continue
		default:
			wait = s.pace.idle()
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
	s.logg.Info(ctx, "outbox publisher context canceled")
	return ctx.Err()
}

// drain handles one batch and returns how many rows it touched.
func (s *Service) drain(ctx context.Context) (int, error) {
	handled := 0
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		for _, event := range events {
			if err := s.deliver(ctx, tx, event); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	return handled, err
}

// deliver publishes one row and records the outcome. Only bookkeeping
// failures are returned; broker errors become retries or dead letters.
func (s *Service) deliver(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	eventType := string(event.EventType)
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return s.park(ctx, tx, event, nil, enums.OutboxDLQReasonNonRetryable, err)
	}

	pubErr := s.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(eventType)
		s.logg.Info(s.logg.WithFields(ctx, s.fields(event, resolved)), "outbox.published")
		return nil
	}

	var nonRetryable registry.NonRetryableError
	if errors.As(pubErr, &nonRetryable) {
		return s.park(ctx, tx, event, resolved, enums.OutboxDLQReasonNonRetryable, pubErr)
	}
	if event.AttemptCount+1 >= s.maxAttempts {
		return s.park(ctx, tx, event, resolved, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("max publish attempts reached: %w", pubErr))
	}

	fields := s.fields(event, resolved)
	fields["attempt_count"] = event.AttemptCount + 1
	fields["error"] = pubErr.Error()
	s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox.publish_retry")
	s.metrics.IncFailed(eventType)
	if err := s.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return nil
}

func (s *Service) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, resolved *registry.ResolvedEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	fields := s.fields(event, resolved)
	fields["error_reason"] = reason
	fields["error"] = cause.Error()
	s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox.dead_lettered")

	if err := s.deadLetters.ParkTx(tx, event, reason, cause); err != nil {
		return fmt.Errorf("dead-letter %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	s.metrics.IncDeadLettered(string(event.EventType))
	return nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	if topic == "" {
		return registry.NewNonRetryableError(fmt.Errorf("no topic for %s", event.EventType))
	}
	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	return s.sink.Publish(publishCtx, outbox.NewMessage(topic, event, resolved.Envelope.EventID))
}

func (s *Service) fields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
		"sink":          s.sinkName,
	}
	if resolved != nil {
		fields["event_id"] = resolved.Envelope.EventID
		fields["topic"] = resolved.Descriptor.Topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}
