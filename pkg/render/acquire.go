package render

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// Provider hands out a drawing surface. A provider may not be ready
// immediately (a window still mapping, a terminal not yet sized) and is
// expected to succeed on a later call.
type Provider interface {
	Acquire(ctx context.Context) (Surface, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Surface, error)

// Acquire implements Provider.
func (f ProviderFunc) Acquire(ctx context.Context) (Surface, error) { return f(ctx) }

// RetryPolicy bounds surface acquisition.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	// MaxDelay caps the doubling delay; zero means uncapped.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 5 attempts starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second}
}

// Acquire obtains a surface from p, retrying with a doubling delay. After
// the last failed attempt it returns an ErrCodeSurfaceUnavailable error
// wrapping the provider's last error. A nil surface without an error counts
// as a failed attempt. Cancelling ctx aborts the wait.
func Acquire(ctx context.Context, p Provider, policy RetryPolicy, logger *log.Logger) (Surface, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	attempts := max(policy.Attempts, 1)
	delay := policy.InitialDelay
	var lastErr error

	for i := range attempts {
		s, err := p.Acquire(ctx)
		if err == nil && s != nil {
			if i > 0 {
				logger.Debug("surface acquired", "attempt", i+1)
			}
			return s, nil
		}
		if err == nil {
			err = errors.New(errors.ErrCodeSurfaceUnavailable, "provider returned no surface")
		}
		lastErr = err
		logger.Debug("surface not ready", "attempt", i+1, "of", attempts, "error", err)

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
				if policy.MaxDelay > 0 && delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			}
		}
	}
	return nil, errors.Wrap(errors.ErrCodeSurfaceUnavailable, lastErr, "no drawing surface after %d attempts", attempts)
}
