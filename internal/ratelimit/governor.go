// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit enforces a minimum interval between outbound API calls.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the gap enforced between consecutive API call
// starts. The Semantic Scholar API allows 1 request per second; the extra
// 100ms keeps clock skew from tripping the limit.
const DefaultMinInterval = 1100 * time.Millisecond

// Governor serializes outbound API calls so that no two call starts are
// closer than the configured interval, process-wide. Search, paper-detail,
// and author-detail requests all draw from the same clock: it is a single
// shared token, not a per-endpoint budget.
type Governor struct {
	limiter *rate.Limiter
}

// New returns a Governor with the given minimum interval between call
// starts. A non-positive interval falls back to DefaultMinInterval.
func New(minInterval time.Duration) *Governor {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Governor{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Wait blocks until the interval since the previous permitted call has
// elapsed, then records the new call's start. The limiter measures wall
// clock, so long-running calls and external delays are correctly
// accounted for rather than drifting a counter.
func (g *Governor) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
