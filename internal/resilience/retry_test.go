package resilience

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("429 too many requests")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoVal_DoesNotRetryPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("invalid api key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := DoVal(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("503 service unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoVal_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("i/o timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	t.Parallel()

	var _ net.Error = timeoutErr{}

	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("invalid request")))
	assert.True(t, IsTransient(timeoutErr{}))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("api error: 429 rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("overloaded_error: the API is overloaded")))
	assert.True(t, IsTransient(errors.New("502 bad gateway")))
}

func TestComputeBackoff_Capped(t *testing.T) {
	t.Parallel()

	cfg := applyDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 2 * time.Second, JitterFraction: 0})
	assert.Equal(t, time.Second, computeBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(1, cfg))
	assert.Equal(t, 2*time.Second, computeBackoff(5, cfg))
}
