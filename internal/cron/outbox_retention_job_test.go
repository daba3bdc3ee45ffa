package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestOutboxRetentionJobUsesDefaultWindow(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{})
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-outboxRetentionDefault), repo.cutoffs[0])
	assert.Equal(t, []int{outboxRetentionBatch}, repo.limits)
}

func TestOutboxRetentionJobUsesConfiguredRetention(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{Retention: 48 * time.Hour})
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-48*time.Hour), repo.cutoffs[0])
}

func TestOutboxRetentionJobDrainsInBatches(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{deleted: []int64{10, 10, 3}}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{BatchSize: 10})

	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, repo.limits, 3)
	for _, c := range repo.cutoffs {
		assert.Equal(t, repo.cutoffs[0], c)
	}
}

func TestOutboxRetentionJobStopsOnCancel(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{deleted: []int64{10, 10, 10}}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{BatchSize: 10})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Len(t, repo.limits, 1)
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeOutboxRetentionRepo{err: errors.New("boom")}
	job := newOutboxRetentionJob(t, repo, OutboxRetentionJobParams{})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNewOutboxRetentionJobRequiresDependencies(t *testing.T) {
	_, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Repository: &fakeOutboxRetentionRepo{}})
	require.Error(t, err)
	_, err = NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: logger.Nop()})
	require.Error(t, err)
}

func newOutboxRetentionJob(t *testing.T, repo *fakeOutboxRetentionRepo, params OutboxRetentionJobParams) *outboxRetentionJob {
	t.Helper()
	params.Logger = logger.Nop()
	params.Repository = repo
	job, err := NewOutboxRetentionJob(params)
	require.NoError(t, err)
	return job.(*outboxRetentionJob)
}

type fakeOutboxRetentionRepo struct {
	cutoffs []time.Time
	limits  []int
	deleted []int64
	err     error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	if len(f.deleted) == 0 {
		return 0, nil
	}
	n := f.deleted[0]
	f.deleted = f.deleted[1:]
	return n, nil
}
