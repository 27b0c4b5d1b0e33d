package gallery

import "time"

// ScrollTracker suppresses image swapping while the user is actively
// scrolling. Any scroll input marks it active and re-arms a quiet timer;
// when the timer expires without further input it flips back to idle and
// fires exactly one settle callback so swapped-in images appear once
// motion stops.
//
// MarkActive and Active run on the UI goroutine; the timer callback is
// marshalled back through run.
type ScrollTracker struct {
	idle     time.Duration
	run      func(func())
	onSettle func()

	timer  *time.Timer
	gen    uint64
	active bool
}

func NewScrollTracker(idle time.Duration, run func(func()), onSettle func()) *ScrollTracker {
	if idle <= 0 {
		idle = DefaultOptions().ScrollIdleTimeout
	}
	return &ScrollTracker{idle: idle, run: run, onSettle: onSettle}
}

// MarkActive records scroll input and restarts the quiet timeout.
func (t *ScrollTracker) MarkActive() {
	t.active = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.idle, func() {
		t.run(func() { t.settle(gen) })
	})
}

// Active reports whether the user is still considered to be scrolling.
func (t *ScrollTracker) Active() bool {
	return t.active
}

// settle ignores timers superseded by fresher input: a timer can fire
// just as MarkActive re-arms, and its marshalled callback must not end
// the scroll the new input started.
func (t *ScrollTracker) settle(gen uint64) {
	if gen != t.gen {
		return
	}
	t.timer = nil
	t.active = false
	t.onSettle()
}

// Stop cancels the pending idle transition, including one already fired
// but not yet marshalled.
func (t *ScrollTracker) Stop() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
