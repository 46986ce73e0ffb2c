package controllers

import (
	"context"
	"math"
	"math/rand"
	"time"

	appDb "github.com/navbryce/feed-be/db"
	"github.com/pkg/errors"
)

const (
	DefaultMaxAttempts = 10
	initialRetryDelay  = 5 * time.Millisecond
	maxRetryDelay      = 500 * time.Millisecond
	backoffFactor      = 2.0 // exponential base
	jitterFraction     = 0.3 // ±30% of the backoff
)

// retryOnConflict reruns a read-modify-write cycle while it loses compare-and-swap races.
// Any error other than appDb.ErrVersionConflict ends the loop immediately.
func retryOnConflict(ctx context.Context, maxAttempts int, cycle func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = cycle()
		if !appDb.IsConflict(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
	return errors.Wrapf(err, "gave up after %v attempts", maxAttempts)
}

func backoff(attempt int) time.Duration {
	delay := float64(initialRetryDelay) * math.Pow(backoffFactor, float64(attempt))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	jitter := delay * jitterFraction * (2*rand.Float64() - 1)
	return time.Duration(delay + jitter)
}
