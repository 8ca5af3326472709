package generator

import (
	"context"
	"sync/atomic"
)

// CancelFlag is a cooperative cancellation token passed into a session.
// The loop polls it once per generated token, so cancellation from another
// goroutine takes effect with at most one token of latency.
type CancelFlag struct {
	v atomic.Bool
}

// Cancel requests that the active generation stop at its next check.
func (f *CancelFlag) Cancel() { f.v.Store(true) }

// Cancelled reports whether cancellation was requested.
func (f *CancelFlag) Cancelled() bool { return f.v.Load() }

// Reset clears the flag so the token can be reused for a new session.
func (f *CancelFlag) Reset() { f.v.Store(false) }

// Bind propagates ctx cancellation into the flag. The returned stop func
// releases the watcher and must be called when the session ends.
func (f *CancelFlag) Bind(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			f.Cancel()
		case <-done:
		}
	}()
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			close(done)
		}
	}
}
