package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultExpiryBatch = 100

type pendingExpirer interface {
	ExpireStalePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// PendingExpiryJobParams configure the unpaid order sweeper.
type PendingExpiryJobParams struct {
	Logger    *logger.Logger
	Orders    pendingExpirer
	TTL       time.Duration
	BatchSize int
}

// NewPendingExpiryJob cancels pending orders older than TTL and returns their stock.
func NewPendingExpiryJob(params PendingExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("pending order ttl must be positive")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &pendingExpiryJob{
		logg:   params.Logger,
		orders: params.Orders,
		ttl:    params.TTL,
		batch:  batch,
		now:    time.Now,
	}, nil
}

type pendingExpiryJob struct {
	logg   *logger.Logger
	orders pendingExpirer
	ttl    time.Duration
	batch  int
	now    func() time.Time
}

func (j *pendingExpiryJob) Name() string { return "pending-order-expiry" }

// Run drains stale orders batch by batch. A short batch means nothing older is left.
func (j *pendingExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	total := 0
	for {
		expired, err := j.orders.ExpireStalePending(ctx, cutoff, j.batch)
		total += expired
		if err != nil {
			return fmt.Errorf("expire pending orders: %w", err)
		}
		if expired < j.batch {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"expired": total,
	})
	j.logg.Info(logCtx, "pending order expiry complete")
	return nil
}
