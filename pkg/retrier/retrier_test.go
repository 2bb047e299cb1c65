package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetrier_Do(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		r := New()
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("success after retries", func(t *testing.T) {
		r := New(WithMaxRetries(3), WithInitialInterval(1*time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("fail")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("fail after max retries", func(t *testing.T) {
		r := New(WithMaxRetries(2), WithInitialInterval(1*time.Millisecond))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	})

	t.Run("context cancellation", func(t *testing.T) {
		r := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, attempts)
	})
}

func TestRetrier_DoWithData(t *testing.T) {
	t.Run("success returns data", func(t *testing.T) {
		r := New()
		val, err := DoWithData(r, context.Background(), func(ctx context.Context) (string, error) {
			return "success", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "success", val)
	})

	t.Run("fail returns error", func(t *testing.T) {
		r := New(WithMaxRetries(1), WithInitialInterval(1*time.Millisecond))
		val, err := DoWithData(r, context.Background(), func(ctx context.Context) (string, error) {
			return "", errors.New("fail")
		})
		assert.Error(t, err)
		assert.Empty(t, val)
	})
}

func TestRetrier_OnRetry(t *testing.T) {
	var attempts []int
	var lastErr error
	r := New(
		WithMaxRetries(2),
		WithInitialInterval(time.Millisecond),
		WithJitter(0),
		WithOnRetry(func(attempt int, err error, wait time.Duration) {
			attempts = append(attempts, attempt)
			lastErr = err
			assert.GreaterOrEqual(t, wait, time.Millisecond)
		}),
	)

	err := r.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("dial refused")
	})
	assert.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.EqualError(t, lastErr, "dial refused")
}

func TestRetrier_PermanentStopsRetrying(t *testing.T) {
	var retried bool
	r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond), WithOnRetry(func(int, error, time.Duration) {
		retried = true
	}))

	cause := errors.New("403 forbidden")
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	})
	assert.Same(t, cause, err)
	assert.Equal(t, 1, attempts)
	assert.False(t, retried)
	assert.NoError(t, Permanent(nil))
}

func TestRetrier_WaitIsCapped(t *testing.T) {
	r := New(WithJitter(0), WithMultiplier(3), WithMaxInterval(5*time.Second))

	sleep, next := r.wait(2 * time.Second)
	assert.Equal(t, 2*time.Second, sleep)
	assert.Equal(t, 5*time.Second, next)
}
