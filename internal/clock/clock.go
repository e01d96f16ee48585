// Package clock holds the context-aware waits used by retry and polling loops.
package clock

import (
	"context"
	"time"
)

// SleepWithContext pauses for d unless ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	return WaitOrSignal(ctx, d, nil)
}

// WaitOrSignal returns after d, on the first value from signal, or with the
// context error once ctx is done. A nil signal never fires.
func WaitOrSignal(ctx context.Context, d time.Duration, signal <-chan struct{}) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-signal:
		return nil
	case <-timer.C:
		return nil
	}
}
