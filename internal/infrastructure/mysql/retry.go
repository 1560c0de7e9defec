package mysql

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "stockledger/internal/errors"
)

// Retrier reruns a whole unit of work when MySQL aborts it with a deadlock
// or lock wait timeout. Each attempt must open its own transaction.
type Retrier struct {
	maxAttempts int
	logger      *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewRetrier(maxAttempts int, logger *zap.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// Do returns fn's first non-deadlock result, or a DeadlockError once every
// attempt deadlocked.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsDeadlock(err) {
			return err
		}
		if attempt == r.maxAttempts {
			r.logger.Error("deadlock retries exhausted", zap.String("operation", op), zap.Int("attempts", attempt), zap.Error(err))
			break
		}

		wait := backoff(attempt)
		r.logger.Warn("deadlock detected, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.maxAttempts),
			zap.Duration("backoff", wait))
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

// backoff doubles from 50ms per attempt with ±20% jitter.
func backoff(attempt int) time.Duration {
	base := 50 * time.Millisecond << (attempt - 1)
	jitter := 0.8 + rand.Float64()*0.4
	return time.Duration(float64(base) * jitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
