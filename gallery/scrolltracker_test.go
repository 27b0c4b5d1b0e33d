package gallery

import (
	"testing"
	"time"
)

func TestScrollTrackerIdleToActiveToIdle(t *testing.T) {
	calls := make(chan func(), 16)
	settled := 0
	tr := NewScrollTracker(20*time.Millisecond, func(f func()) { calls <- f }, func() {
		settled++
	})

	if tr.Active() {
		t.Fatal("tracker must start idle")
	}

	tr.MarkActive()
	if !tr.Active() {
		t.Fatal("scroll input must mark the tracker active")
	}

	pump(calls, 200*time.Millisecond)
	if tr.Active() {
		t.Fatal("tracker should return to idle after the quiet timeout")
	}
	if settled != 1 {
		t.Fatalf("exactly one settle render expected, got %d", settled)
	}
}

func TestScrollTrackerReArmsOnRepeatedInput(t *testing.T) {
	calls := make(chan func(), 16)
	settled := 0
	tr := NewScrollTracker(50*time.Millisecond, func(f func()) { calls <- f }, func() {
		settled++
	})

	// Keep scrolling faster than the idle timeout; no settle may fire.
	for i := 0; i < 5; i++ {
		tr.MarkActive()
		pump(calls, 20*time.Millisecond)
		if !tr.Active() {
			t.Fatal("tracker went idle while input kept arriving")
		}
	}
	if settled != 0 {
		t.Fatalf("settle fired during active scrolling: %d", settled)
	}

	// Let it rest: one settle, once.
	pump(calls, 250*time.Millisecond)
	if tr.Active() || settled != 1 {
		t.Fatalf("active=%v settled=%d after quiet period", tr.Active(), settled)
	}
}

func TestScrollTrackerStaleSettleIgnoredAfterNewInput(t *testing.T) {
	calls := make(chan func(), 16)
	settled := 0
	tr := NewScrollTracker(10*time.Millisecond, func(f func()) { calls <- f }, func() {
		settled++
	})

	tr.MarkActive()
	f := recvCall(t, calls)

	// New input arrives while the first idle callback is still in flight;
	// running the old callback must not end the scroll it predates.
	tr.MarkActive()
	f()
	if !tr.Active() || settled != 0 {
		t.Fatalf("superseded callback settled the tracker: active=%v settled=%d", tr.Active(), settled)
	}

	// The re-armed timer still settles on its own.
	pump(calls, 200*time.Millisecond)
	if tr.Active() || settled != 1 {
		t.Fatalf("active=%v settled=%d after quiet period", tr.Active(), settled)
	}
}

func TestScrollTrackerStop(t *testing.T) {
	calls := make(chan func(), 16)
	settled := 0
	tr := NewScrollTracker(10*time.Millisecond, func(f func()) { calls <- f }, func() {
		settled++
	})

	tr.MarkActive()
	tr.Stop()
	pump(calls, 100*time.Millisecond)
	if settled != 0 {
		t.Fatalf("stopped tracker must not settle, got %d", settled)
	}
}
