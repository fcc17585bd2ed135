package services

import (
	"time"
)

// DefaultProductAnalysisTTL is how long a shared product analysis is served
// before being regenerated. Per-user scan records have no TTL at all: the
// fact that an input was analyzed for a user does not go stale.
const DefaultProductAnalysisTTL = 30 * 24 * time.Hour

// FreshnessPolicy decides whether a generated artifact is still valid.
// An artifact exactly at the boundary counts as stale; the comparison
// direction is the same everywhere.
type FreshnessPolicy struct {
	ttl time.Duration
	now func() time.Time
}

func NewFreshnessPolicy(ttl time.Duration) FreshnessPolicy {
	return FreshnessPolicy{ttl: ttl, now: time.Now}
}

// NewFreshnessPolicyWithClock pins the clock, used by tests.
func NewFreshnessPolicyWithClock(ttl time.Duration, now func() time.Time) FreshnessPolicy {
	if now == nil {
		now = time.Now
	}
	return FreshnessPolicy{ttl: ttl, now: now}
}

func (p FreshnessPolicy) IsFresh(lastUpdatedAt time.Time) bool {
	return p.now().Sub(lastUpdatedAt) < p.ttl
}

func (p FreshnessPolicy) TTL() time.Duration {
	return p.ttl
}
