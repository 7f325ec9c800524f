// Package backoff implements the bounded exponential retry policy shared by the
// price collector and the notifier.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy retries an operation up to Attempts times, sleeping BaseDelay*2^i between tries.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration

	// OnRetry, when set, is called after each failed attempt that will be retried.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// New returns a Policy. Attempts below 1 are treated as 1.
func New(attempts int, baseDelay time.Duration) Policy {
	if attempts < 1 {
		attempts = 1
	}
	return Policy{Attempts: attempts, BaseDelay: baseDelay}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Delay returns the wait before retry number attempt (0-based).
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Do runs op until it succeeds, returns a permanent error, the attempts are exhausted,
// or ctx is cancelled.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		wait := p.Delay(i)
		if p.OnRetry != nil {
			p.OnRetry(i+1, wait, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
