package app_test

import (
	"testing"
	"time"

	"assessment-engine/internal/app"
)

func TestClockRemainingIsDeadlineRelative(t *testing.T) {
	mc := newManualClock()
	clock := app.NewClock(mc.Now().Add(90*time.Second), mc.Now, nil)
	clock.Start(mc)

	mc.Advance(30 * time.Second)
	if got := clock.Remaining(); got != 60*time.Second {
		t.Fatalf("expected 60s remaining, got %v", got)
	}
	mc.Advance(60 * time.Second)
	if got := clock.Remaining(); got != 0 {
		t.Fatalf("expected 0 at deadline, got %v", got)
	}
	mc.Advance(time.Hour)
	if got := clock.Remaining(); got != 0 {
		t.Fatalf("remaining must never go negative, got %v", got)
	}
}

func TestClockFiresOnce(t *testing.T) {
	mc := newManualClock()
	fired := 0
	clock := app.NewClock(mc.Now().Add(time.Minute), mc.Now, func() { fired++ })
	clock.Start(mc)
	clock.Start(mc)

	mc.Advance(59 * time.Second)
	if fired != 0 || clock.State() != app.ClockRunning {
		t.Fatalf("fired early: fired=%d state=%s", fired, clock.State())
	}
	mc.Advance(time.Second)
	mc.Advance(time.Minute)
	if fired != 1 {
		t.Fatalf("expected exactly one firing, got %d", fired)
	}
	if clock.State() != app.ClockFired {
		t.Fatalf("expected fired state, got %s", clock.State())
	}
	if clock.Cancel() {
		t.Fatalf("cancel after firing must lose")
	}
}

func TestClockCancelSuppressesFiring(t *testing.T) {
	mc := newManualClock()
	fired := 0
	clock := app.NewClock(mc.Now().Add(time.Minute), mc.Now, func() { fired++ })
	clock.Start(mc)

	mc.Advance(59*time.Second + 999*time.Millisecond)
	if !clock.Cancel() {
		t.Fatalf("expected cancel to win before deadline")
	}
	if mc.Pending() != 0 {
		t.Fatalf("expected timer stopped")
	}
	mc.Advance(time.Minute)
	if fired != 0 {
		t.Fatalf("cancelled clock fired %d times", fired)
	}
	if clock.State() != app.ClockCancelled {
		t.Fatalf("expected cancelled, got %s", clock.State())
	}
	clock.Start(mc)
	if clock.State() != app.ClockCancelled {
		t.Fatalf("start after cancel must be a no-op")
	}
}

func TestClockWithRuntimeTimer(t *testing.T) {
	done := make(chan struct{})
	clock := app.NewClock(time.Now().Add(20*time.Millisecond), time.Now, func() { close(done) })
	clock.Start(runtimeScheduler{})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("clock did not fire")
	}
	if clock.Remaining() != 0 {
		t.Fatalf("expected no time left after firing, got %v", clock.Remaining())
	}
}

type runtimeScheduler struct{}

func (runtimeScheduler) AfterFunc(d time.Duration, f func()) app.Timer {
	return time.AfterFunc(d, f)
}
