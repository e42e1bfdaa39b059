package market

import (
	"context"
	"time"

	"option-pricer/internal/errors"
)

// RetryConfig holds retry configuration for spot lookups.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingSource retries transient spot failures with exponential backoff.
// A symbol the source does not know is not retried.
type RetryingSource struct {
	source SpotSource
	cfg    RetryConfig
}

// WithRetry wraps source with retries.
func WithRetry(source SpotSource, cfg RetryConfig) *RetryingSource {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	return &RetryingSource{source: source, cfg: cfg}
}

// Spot returns the first successful price, or the last error.
func (r *RetryingSource) Spot(ctx context.Context, symbol string) (float64, error) {
	var lastErr error
	delay := r.cfg.InitialDelay

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		price, err := r.source.Spot(ctx, symbol)
		if err == nil {
			return price, nil
		}
		lastErr = err
		if errors.Is(err, errors.ErrDataNotFound) || ctx.Err() != nil {
			return 0, err
		}

		// Don't sleep after the last attempt
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
		delay = time.Duration(float64(delay) * r.cfg.BackoffFactor)
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	return 0, errors.Wrapf(lastErr, "spot %s after %d attempts", symbol, r.cfg.MaxAttempts)
}
