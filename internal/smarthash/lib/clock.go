package lib

import (
	"context"
	"time"
)

// Clock abstracts the time operations used by the hash engine and the
// consolidated store so tests can control retry pauses and autosave timing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed. If d <= 0 the channel fires immediately.
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Sleep waits for d on clock. It returns ErrUserInterrupted as soon as ctx
// is cancelled, including before the wait starts.
func Sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if ctx.Err() != nil {
		return ErrUserInterrupted
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ErrUserInterrupted
	case <-clock.After(d):
		return nil
	}
}
