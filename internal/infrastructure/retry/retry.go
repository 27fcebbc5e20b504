// Package retry wraps generation-service calls with classified-failure
// retries and exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Policy configures the backoff schedule. The delay before attempt n+1 is
// InitialDelay * 2^n. There is intentionally no jitter and no delay cap;
// callers bound total time through the context.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// DefaultPolicy returns the stock schedule: three retries seeded at two
// seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   domain.DefaultMaxRetries,
		InitialDelay: domain.DefaultInitialDelay,
	}
}

// FromSettings builds a policy from configuration, falling back to the
// defaults for unset fields.
func FromSettings(settings domain.RetrySettings) Policy {
	policy := DefaultPolicy()
	if settings.MaxRetries > 0 {
		policy.MaxRetries = settings.MaxRetries
	}
	if settings.InitialDelayMS > 0 {
		policy.InitialDelay = time.Duration(settings.InitialDelayMS) * time.Millisecond
	}
	return policy
}

// Do runs op up to policy.MaxRetries+1 times. A failure is retried only when
// its classified category is retryable; any other failure, and the last
// failure once retries are exhausted, is propagated unchanged. Each retry
// logs a warning with the attempt count and the computed delay. Do knows
// nothing about what op does; the same executor backs chat, image and every
// simulated-execution call.
func Do[T any](ctx context.Context, policy Policy, log ports.Logger, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		category := domain.ClassifyError(err)
		if !category.Retryable() || attempt == policy.MaxRetries {
			return zero, lastErr
		}

		delay := policy.InitialDelay << attempt
		if log != nil {
			log.Warn("generation call failed, retrying", map[string]interface{}{
				"attempt":  attempt + 1,
				"retries":  policy.MaxRetries,
				"delay":    delay.String(),
				"category": string(category),
			})
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
