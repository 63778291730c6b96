package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Options controls the retry loop.
type Options struct {
	MaxAttempts int           // Total attempts, including the first
	BaseDelay   time.Duration // Delay before the second attempt
	MaxDelay    time.Duration // Cap applied before jitter
}

// DefaultOptions suits short HTTP calls.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Permanent wraps an error so Do stops retrying and returns it immediately.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do runs fn until it succeeds, returns a permanent error, the attempts are
// exhausted, or the context is done. Delays grow exponentially with full
// jitter so concurrent callers do not retry in lockstep.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			delay := opts.BaseDelay << (attempt - 1)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
			jittered := time.Duration(rng.Int63n(int64(delay) + 1))
			select {
			case <-time.After(jittered):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", opts.MaxAttempts, lastErr)
}
