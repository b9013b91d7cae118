package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(Settings{
		Name:        "test",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,
	})
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := newBreaker(time.Hour)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	}

	err := cb.Execute(func() error {
		t.Fatal("call should have been rejected")
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := newBreaker(time.Hour)
	boom := errors.New("boom")

	require.Error(t, cb.Execute(func() error { return boom }))
	require.Error(t, cb.Execute(func() error { return boom }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return boom }))

	// Two failures since the last success: still closed.
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestBreakerProbesAfterTimeout(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return boom }))
	}
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	// The probe is let through and closes the breaker.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	cb := newBreaker(10 * time.Millisecond)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return boom }))
	}

	time.Sleep(20 * time.Millisecond)
	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}
