package app

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is the handle returned by a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. The runtime implementation wraps time.AfterFunc;
// tests swap in a manual one.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type runtimeScheduler struct{}

func (runtimeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClockState is the lifecycle of a session countdown.
type ClockState int32

const (
	ClockPending ClockState = iota
	ClockRunning
	ClockFired
	ClockCancelled
)

func (s ClockState) String() string {
	switch s {
	case ClockPending:
		return "pending"
	case ClockRunning:
		return "running"
	case ClockFired:
		return "fired"
	case ClockCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Clock is a single-shot countdown to a fixed deadline.
// Fired and Cancelled are terminal; only one of them is ever reached.
type Clock struct {
	deadline time.Time
	now      func() time.Time
	onExpire func()

	state atomic.Int32

	mu    sync.Mutex
	timer Timer
}

func NewClock(deadline time.Time, now func() time.Time, onExpire func()) *Clock {
	return &Clock{deadline: deadline, now: now, onExpire: onExpire}
}

// Start schedules the expiry callback. Calling Start twice, or after Cancel, is a no-op.
func (c *Clock) Start(sched Scheduler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.CompareAndSwap(int32(ClockPending), int32(ClockRunning)) {
		return
	}
	c.timer = sched.AfterFunc(c.Remaining(), c.fire)
}

// Cancel stops the countdown. It reports whether this call won against expiry.
func (c *Clock) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CompareAndSwap(int32(ClockRunning), int32(ClockCancelled)) {
		if c.timer != nil {
			c.timer.Stop()
		}
		return true
	}
	return c.state.CompareAndSwap(int32(ClockPending), int32(ClockCancelled))
}

// expireNow fires immediately, ahead of a lagging timer. It is a no-op once the
// clock has fired or been cancelled.
func (c *Clock) expireNow() {
	c.mu.Lock()
	fired := c.state.CompareAndSwap(int32(ClockRunning), int32(ClockFired)) ||
		c.state.CompareAndSwap(int32(ClockPending), int32(ClockFired))
	if fired && c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	if fired && c.onExpire != nil {
		c.onExpire()
	}
}

// Due reports whether the deadline has been reached.
func (c *Clock) Due() bool {
	return !c.now().Before(c.deadline)
}

func (c *Clock) fire() {
	if !c.state.CompareAndSwap(int32(ClockRunning), int32(ClockFired)) {
		return
	}
	if c.onExpire != nil {
		c.onExpire()
	}
}

// Remaining is max(0, deadline-now), recomputed on every call.
func (c *Clock) Remaining() time.Duration {
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Clock) Deadline() time.Time {
	return c.deadline
}

func (c *Clock) State() ClockState {
	return ClockState(c.state.Load())
}
