package generate

import (
	"context"
	"time"
)

// Policy controls how Retry re-attempts a failing call.
type Policy struct {
	// MaxAttempts is the total attempt budget. Values below 1 are
	// treated as 1.
	MaxAttempts int

	// BaseDelay is the wait before the second attempt; it doubles after
	// each failure. Defaults to one second.
	BaseDelay time.Duration

	// Retryable classifies an error as transient (retry) or fatal
	// (return immediately). A nil predicate retries every failure.
	Retryable func(error) bool
}

// Retry executes fn under the policy with exponential backoff.
// Collaborator implementations wrap their transport calls with this;
// the coordinator itself never retries.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.MaxAttempts, 1)
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
