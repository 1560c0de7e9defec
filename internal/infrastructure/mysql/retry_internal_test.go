package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "stockledger/internal/errors"
)

func newTestRetrier(attempts int) (*Retrier, *[]time.Duration) {
	r := NewRetrier(attempts, zap.NewNop())
	var sleeps []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return r, &sleeps
}

func TestRetrier_RetriesDeadlocksUntilSuccess(t *testing.T) {
	r, sleeps := newTestRetrier(3)
	calls := 0

	err := r.Do(context.Background(), "edit", func() error {
		calls++
		if calls < 3 {
			return &driver.MySQLError{Number: 1213}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, *sleeps, 2)
}

func TestRetrier_ExhaustedBecomesDeadlockError(t *testing.T) {
	r, sleeps := newTestRetrier(3)
	calls := 0

	err := r.Do(context.Background(), "edit", func() error {
		calls++
		return &driver.MySQLError{Number: 1205}
	})

	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
	assert.Len(t, *sleeps, 2)
}

func TestRetrier_OtherErrorsReturnImmediately(t *testing.T) {
	r, sleeps := newTestRetrier(3)
	calls := 0
	want := apperrors.NewNotFoundError("missing")

	err := r.Do(context.Background(), "create", func() error {
		calls++
		return want
	})

	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

func TestRetrier_StopsOnCancelledContext(t *testing.T) {
	r, _ := newTestRetrier(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := r.Do(ctx, "delete", func() error {
		calls++
		return &driver.MySQLError{Number: 1213}
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestBackoff_GrowsWithJitter(t *testing.T) {
	for attempt := 1; attempt <= 3; attempt++ {
		base := 50 * time.Millisecond << (attempt - 1)
		got := backoff(attempt)
		assert.GreaterOrEqual(t, got, time.Duration(float64(base)*0.8))
		assert.LessOrEqual(t, got, time.Duration(float64(base)*1.2))
	}
}
