package lib

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleep(t *testing.T) {
	t.Run("waits on the clock", func(t *testing.T) {
		clock := newFakeClock()
		start := clock.Now()

		require.NoError(t, Sleep(context.Background(), clock, 5*time.Second))
		assert.Equal(t, 5*time.Second, clock.Now().Sub(start))
	})

	t.Run("zero duration returns at once", func(t *testing.T) {
		clock := newFakeClock()
		require.NoError(t, Sleep(context.Background(), clock, 0))
		assert.Empty(t, clock.Waits())
	})

	t.Run("cancelled before the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Sleep(ctx, newFakeClock(), time.Hour)
		assert.ErrorIs(t, err, ErrUserInterrupted)
	})

	t.Run("cancelled during the wait", func(t *testing.T) {
		clock := newFakeClock()
		clock.blocked = true
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- Sleep(ctx, clock, time.Hour) }()
		require.Eventually(t, func() bool { return len(clock.Waits()) == 1 }, time.Second, time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, ErrUserInterrupted)
		case <-time.After(5 * time.Second):
			t.Fatal("Sleep did not return after cancellation")
		}
	})
}
