package games

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Upstream admission limits. The bucket matches the upstream's stated
// request quota; the in-flight ceiling bounds how many calls can be
// outstanding at once regardless of rate tokens.
const (
	upstreamRequestsPerSecond = 4
	upstreamBurst             = 4
	upstreamMaxInFlight       = 8
)

// admission combines a token-bucket rate limit with an in-flight
// concurrency ceiling. Both must be satisfied before an upstream call is
// issued. One permit covers an entire logical call including retries:
// Release returns the in-flight slot only, the rate token is consumed.
//
// Waiters are queued in arrival order by the underlying limiter and
// semaphore, so admission is fair under bursts.
type admission struct {
	bucket   *rate.Limiter
	inFlight *semaphore.Weighted
}

func newAdmission(perSecond rate.Limit, burst int, maxInFlight int64) *admission {
	return &admission{
		bucket:   rate.NewLimiter(perSecond, burst),
		inFlight: semaphore.NewWeighted(maxInFlight),
	}
}

// Acquire blocks until a rate token and an in-flight slot are both
// available, or the context is cancelled. On success the caller must
// call Release exactly once.
func (a *admission) Acquire(ctx context.Context) error {
	if err := a.inFlight.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("admission cancelled: %w", err)
	}
	if err := a.bucket.Wait(ctx); err != nil {
		a.inFlight.Release(1)
		return fmt.Errorf("admission cancelled: %w", err)
	}
	return nil
}

// Release frees the in-flight slot taken by Acquire. The rate token is
// not refunded.
func (a *admission) Release() {
	a.inFlight.Release(1)
}
