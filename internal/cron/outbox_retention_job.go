package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	outboxRetentionDefault = 30 * 24 * time.Hour
	outboxRetentionBatch   = 500
)

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

type OutboxRetentionJobParams struct {
	Logger     *logger.Logger
	Repository outboxRetentionRepo
	// Retention is how long delivered rows are kept. Defaults to 30 days.
	Retention time.Duration
	// BatchSize bounds each DELETE so the table is never locked for long.
	BatchSize int
}

// NewOutboxRetentionJob deletes delivered outbox rows past the retention
// window. Undelivered and dead-lettered rows are never touched.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository required")
	}
	job := &outboxRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: params.Retention,
		batch:     params.BatchSize,
		now:       time.Now,
	}
	if job.retention <= 0 {
		job.retention = outboxRetentionDefault
	}
	if job.batch <= 0 {
		job.batch = outboxRetentionBatch
	}
	return job, nil
}

type outboxRetentionJob struct {
	logg      *logger.Logger
	repo      outboxRetentionRepo
	retention time.Duration
	batch     int
	now       func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

// Run deletes in batches until a short batch signals the backlog is gone or
// ctx expires; rows removed before a failure stay removed.
func (j *outboxRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var total int64
	for {
		n, err := j.repo.DeletePublishedBefore(ctx, cutoff, j.batch)
		total += n
		if err != nil {
			return fmt.Errorf("outbox retention after %d rows: %w", total, err)
		}
		if n < int64(j.batch) {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": total,
	}), "cron.outbox_retention_done")
	return nil
}
