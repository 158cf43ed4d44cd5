// Package retry wraps transient operations with rate-limited, backed-off
// retries. Used for the HTTP lookups against external media services.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Config controls one retry loop.
type Config struct {
	Attempts int
	BaseWait time.Duration
	MaxWait  time.Duration
	Limiter  *rate.Limiter // optional, bounds attempt rate across callers
}

func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		BaseWait: 500 * time.Millisecond,
		MaxWait:  5 * time.Second,
	}
}

// Permanent marks an error as not worth retrying.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Do runs fn until it succeeds, returns a Permanent error, or attempts run
// out. Waits grow exponentially with jitter.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var perm *Permanent
		if errors.As(lastErr, &perm) {
			return perm.Err
		}

		if attempt == cfg.Attempts-1 {
			break
		}
		wait := cfg.BaseWait << attempt
		if cfg.MaxWait > 0 && wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
		wait += time.Duration(rand.Int63n(int64(wait)/4 + 1))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("after %d attempts: %w", cfg.Attempts, lastErr)
}
