package stream

import (
	"sync"
	"time"
)

// Scheduler registers a repeating callback. Every must not call fn
// synchronously. The returned cancel stops further calls and is idempotent.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs fn on a dedicated goroutine driven by time.Ticker.
type TickerScheduler struct{}

// Every implements Scheduler.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	closed := make(chan struct{})
	var closeOnce sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return func() {
		closeOnce.Do(func() {
			close(closed)
		})
	}
}
