package main

import (
	"context"
	"math/rand/v2"
	"time"
)

const jitterWindow = 250 * time.Millisecond

// pacer decides how long the publisher sleeps between polls.
type pacer struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
	jitter  func() time.Duration
}

func newPacer(base, max time.Duration) *pacer {
	return &pacer{
		base:    base,
		max:     max,
		current: base,
		jitter:  func() time.Duration { return rand.N(jitterWindow) },
	}
}

func (p *pacer) reset() { p.current = p.base }

// idle returns the poll interval after an empty batch.
func (p *pacer) idle() time.Duration {
	p.reset()
	return p.base + p.jitter()
}

// failed doubles the wait up to max.
func (p *pacer) failed() time.Duration {
	p.current = min(p.current*2, p.max)
	return p.current + p.jitter()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
