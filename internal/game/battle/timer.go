package battle

import (
	"sync"
	"time"
)

// SettleTimer fires a callback once after a duration unless stopped.
// It is safe for concurrent use.
type SettleTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewSettleTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: Returns a running SettleTimer; onFire will be called unless Stop is called first.
func NewSettleTimer(duration time.Duration, onFire func()) *SettleTimer {
	st := &SettleTimer{}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timer = time.AfterFunc(duration, func() {
		st.mu.Lock()
		stopped := st.stopped
		st.stopped = true
		st.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return st
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns unless it was already running.
func (st *SettleTimer) Stop() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stopped = true
	st.timer.Stop()
}

// ScheduleFunc runs fn once after d and returns a func that cancels it.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())
