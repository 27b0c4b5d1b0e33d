package gallery

import "time"

// Scheduler coalesces bursts of render triggers (scroll, resize, data
// updates) into a single pending render while enforcing a minimum interval
// between renders. At most one render is pending at a time and the most
// recent trigger wins; continuous triggering delays renders but never
// starves them.
//
// All Schedule calls come from the UI goroutine. The timer callback fires
// on its own goroutine and is marshalled back through run (fyne.Do in
// production), so state is only ever touched on the UI side.
type Scheduler struct {
	minInterval time.Duration
	now         func() time.Time
	run         func(func())
	render      func()

	timer       *time.Timer
	gen         uint64
	scheduledAt time.Time
}

func NewScheduler(minInterval time.Duration, run func(func()), render func()) *Scheduler {
	if minInterval <= 0 {
		minInterval = DefaultOptions().RenderMinInterval
	}
	return &Scheduler{
		minInterval: minInterval,
		now:         time.Now,
		run:         run,
		render:      render,
	}
}

// Schedule arranges one future render no earlier than minDelay from now and
// no earlier than minInterval after the previously scheduled render. Any
// already-pending render is replaced.
func (s *Scheduler) Schedule(minDelay time.Duration) {
	now := s.now()
	target := now.Add(minDelay)
	if earliest := s.scheduledAt.Add(s.minInterval); target.Before(earliest) {
		target = earliest
	}

	wait := target.Sub(now)
	if wait < 0 {
		wait = 0
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.scheduledAt = target
	s.timer = time.AfterFunc(wait, func() {
		s.run(func() { s.fire(gen) })
	})
}

// fire runs the render unless a newer Schedule or Stop superseded this
// timer between its firing and the marshalled callback running. Stop
// cannot catch a timer in that window, so the generation check is what
// keeps "at most one pending render" true.
func (s *Scheduler) fire(gen uint64) {
	if gen != s.gen {
		return
	}
	s.timer = nil
	s.render()
}

// Stop cancels any pending render, including one already fired but not
// yet marshalled.
func (s *Scheduler) Stop() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
