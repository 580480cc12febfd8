package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Retrier reruns rate-limited provider calls with exponential backoff. Any
// other failure is returned immediately.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Log         zerolog.Logger
}

// NewRetrier returns a retrier with the standard 3-attempt, 1s-base policy.
func NewRetrier(log zerolog.Logger) *Retrier {
	return &Retrier{MaxAttempts: 3, BaseDelay: time.Second, Log: log}
}

// Do invokes fn up to MaxAttempts times. After a rate-limited failure it
// waits BaseDelay*2^attempt (1s, 2s, ...) before the next try, honoring ctx
// cancellation during the wait. The error from the final attempt is returned
// unchanged so callers see the vendor's own message.
func (r *Retrier) Do(ctx context.Context, fn func() (*Response, error)) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRateLimited(err) || attempt == r.MaxAttempts-1 {
			return nil, lastErr
		}

		delay := r.BaseDelay * (1 << attempt)
		r.Log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", r.MaxAttempts).
			Dur("delay", delay).
			Msg("rate limited, backing off before retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
