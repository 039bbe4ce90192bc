package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// Policy is a fixed-delay policy: no jitter and no growth between attempts.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

type Controller struct {
	clock clockwork.Clock
}

func NewController(clock clockwork.Clock) *Controller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Controller{clock: clock}
}

// Do runs op until it succeeds or the policy's attempts are spent.
func (c *Controller) Do(ctx context.Context, policy Policy, op func(ctx context.Context, attempt int) error) error {
	maxAttempts := max(policy.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt == maxAttempts {
			break
		}

		slog.Warn("Attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"delay", policy.Delay.String(),
			"error", lastErr)

		if err := c.wait(ctx, policy.Delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}

func (c *Controller) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	select {
	case <-c.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do is the value-returning form of Controller.Do.
func Do[T any](ctx context.Context, c *Controller, policy Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	err := c.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		value, err := op(ctx, attempt)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}
