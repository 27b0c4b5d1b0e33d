package gallery

import (
	"bytes"
	"image/png"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Grid is the virtualized thumbnail grid. It owns the slot pool, the
// memory cache, the inflight set, and the render scheduling; thumbnails it
// cannot satisfy from memory are handed to the pipeline and merged back in
// on poll ticks.
//
// All state is mutated on the Fyne UI goroutine only. Background timers and
// the pipeline worker re-enter through run (fyne.Do), so none of it needs
// locking.
type Grid struct {
	widget.BaseWidget

	opts Options
	mem  *MemoryCache
	pipe *Pipeline
	run  func(func())

	scheduler *Scheduler
	tracker   *ScrollTracker

	scroll  *container.Scroll
	content *fyne.Container

	items    []Item
	slots    []*slot
	inflight map[Key]struct{}

	viewport  Viewport
	lastKey   renderKey
	pollTimer *time.Timer
	lastSize  fyne.Size

	// OnOpen fires on double-click of a bound slot.
	OnOpen func(Item)
	// OnHover fires when the pointer rests on a slot; OnHoverEnd when it
	// leaves. Used by the app for the description tooltip.
	OnHover    func(Item, fyne.Position)
	OnHoverEnd func()
}

// renderKey identifies a render pass; a pass with an unchanged key only
// re-arms the completion poller.
type renderKey struct {
	firstRow    int
	columns     int
	visibleRows int
	cardWidth   int
	itemCount   int
	scrolling   bool
	valid       bool
}

// NewGrid builds the grid around a generation pipeline. The pipeline is
// owned by the grid from here on and is shut down by Close.
func NewGrid(opts Options, pipe *Pipeline) *Grid {
	g := &Grid{
		opts:     opts.withDefaults(),
		pipe:     pipe,
		run:      fyne.Do,
		inflight: make(map[Key]struct{}),
	}
	g.mem = NewMemoryCache(g.opts.CacheCapacity)
	g.scheduler = NewScheduler(g.opts.RenderMinInterval, func(f func()) { g.run(f) }, g.renderPass)
	g.tracker = NewScrollTracker(g.opts.ScrollIdleTimeout, func(f func()) { g.run(f) }, func() {
		g.scheduler.Schedule(time.Millisecond)
	})

	g.content = container.New(&virtualLayout{grid: g})
	g.scroll = container.NewScroll(g.content)
	g.scroll.OnScrolled = func(fyne.Position) {
		g.tracker.MarkActive()
		g.scheduler.Schedule(time.Millisecond)
	}

	g.ExtendBaseWidget(g)
	return g
}

func (g *Grid) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(g.scroll)
}

// Resize re-evaluates the layout on geometry changes, debounced a little
// longer than scroll-driven renders so window drags don't thrash the pool.
func (g *Grid) Resize(size fyne.Size) {
	g.BaseWidget.Resize(size)
	if size == g.lastSize {
		return
	}
	g.lastSize = size
	g.lastKey = renderKey{}
	g.scheduler.Schedule(60 * time.Millisecond)
}

// SetItems replaces the result set and scrolls back to the top. Caches and
// inflight requests persist: they are keyed by content, not by search, so
// results of stale requests are still merged and reused.
func (g *Grid) SetItems(items []Item) {
	g.items = items
	g.scroll.ScrollToTop()
	g.lastKey = renderKey{}
	g.scheduler.Schedule(time.Millisecond)
}

// Items returns the current result set.
func (g *Grid) Items() []Item {
	return g.items
}

// ScheduleRender requests a redraw, coalesced by the scheduler.
func (g *Grid) ScheduleRender() {
	g.scheduler.Schedule(time.Millisecond)
}

// Close stops timers and shuts the pipeline worker down.
func (g *Grid) Close() {
	g.scheduler.Stop()
	g.tracker.Stop()
	if g.pollTimer != nil {
		g.pollTimer.Stop()
		g.pollTimer = nil
	}
	g.pipe.Close()
}

// renderPass is the single place slots get rebound: it recomputes the
// visible range, binds each pooled slot to its result index, resolves
// thumbnails memory-first, queues generation for misses, and issues
// prefetch for the buffer region.
func (g *Grid) renderPass() {
	size := g.scroll.Size()
	offset := int(g.scroll.Offset.Y)

	vp := ComputeViewport(offset, int(size.Width), int(size.Height), len(g.items), g.opts.CardWidth, g.opts.CardHeight)
	poolChanged := g.ensurePool(vp)
	if g.viewport.ContentHeight != vp.ContentHeight || g.viewport.Columns != vp.Columns {
		g.content.Refresh()
		g.scroll.Refresh()
	}
	g.viewport = vp

	key := renderKey{
		firstRow:    vp.FirstRow,
		columns:     vp.Columns,
		visibleRows: vp.VisibleRows,
		cardWidth:   g.opts.CardWidth,
		itemCount:   len(g.items),
		scrolling:   g.tracker.Active(),
		valid:       true,
	}
	if !poolChanged && key == g.lastKey {
		g.ensurePoller()
		return
	}
	g.lastKey = key

	start := vp.FirstRow * vp.Columns
	requested := make(map[Key]struct{}, len(g.slots))

	for i, s := range g.slots {
		idx := start + i
		if idx >= len(g.items) {
			s.Hide()
			continue
		}

		it := g.items[idx]
		row := i / vp.Columns
		col := i % vp.Columns
		s.Move(fyne.NewPos(
			float32(col*g.opts.CardWidth+slotPadding),
			float32((vp.FirstRow+row)*g.opts.CardHeight+slotPadding),
		))
		s.Resize(fyne.NewSize(
			float32(g.opts.CardWidth-slotPadding*2),
			float32(g.opts.CardHeight-slotPadding*2),
		))
		s.bind(idx, it)
		s.Show()

		if g.tracker.Active() {
			// No image swaps mid-scroll; the settle render brings them in.
			s.showPlaceholder()
			continue
		}

		ck := Key{ID: it.CacheID(), Size: g.opts.ThumbWidth}
		if t := g.mem.Get(ck); t != nil {
			s.showThumb(t.Image)
		} else {
			s.showPlaceholder()
			g.request(idx, it)
			requested[ck] = struct{}{}
		}
	}

	g.prefetch(vp, start, requested)
	g.ensurePoller()
}

// request enqueues generation for an item unless its key is already
// inflight. Reports whether a new request was issued.
func (g *Grid) request(idx int, it Item) bool {
	ck := Key{ID: it.CacheID(), Size: g.opts.ThumbWidth}
	if _, ok := g.inflight[ck]; ok {
		return false
	}
	g.inflight[ck] = struct{}{}
	if !g.pipe.Enqueue(Request{Index: idx, Path: it.Path, ID: it.CacheID()}) {
		// Queue full; un-mark so the next pass may retry.
		delete(g.inflight, ck)
		return false
	}
	return true
}

// prefetch warms a buffer of rows around the viewport, bounded by a
// per-pass budget so huge result sets cannot flood the pipeline.
func (g *Grid) prefetch(vp Viewport, visibleStart int, alreadyRequested map[Key]struct{}) {
	if len(g.items) == 0 {
		return
	}

	start, end := vp.RowRange(len(g.items), g.opts.PrefetchRows)
	visibleEnd := visibleStart + len(g.slots)
	budget := g.opts.PrefetchBudget

	for i := start; i < end && budget > 0; i++ {
		if i >= visibleStart && i < visibleEnd {
			continue
		}
		it := g.items[i]
		ck := Key{ID: it.CacheID(), Size: g.opts.ThumbWidth}
		if _, ok := alreadyRequested[ck]; ok {
			continue
		}
		if g.mem.Get(ck) != nil {
			continue
		}
		if g.request(i, it) {
			budget--
		}
	}
}

// ensurePool resizes the slot pool to cols x visibleRows. Reports whether
// the pool was rebuilt.
func (g *Grid) ensurePool(vp Viewport) bool {
	desired := vp.Columns * vp.VisibleRows
	if len(g.slots) == desired {
		return false
	}

	g.slots = make([]*slot, desired)
	objects := make([]fyne.CanvasObject, desired)
	for i := range g.slots {
		s := newSlot(g)
		s.Hide()
		g.slots[i] = s
		objects[i] = s
	}
	g.content.Objects = objects
	g.content.Refresh()
	return true
}

// ensurePoller keeps a single repeating completion poll armed. The poll
// runs on the UI goroutine and drains a bounded batch per tick so the UI
// stays responsive no matter how fast the worker produces.
func (g *Grid) ensurePoller() {
	if g.pollTimer != nil {
		return
	}
	g.pollTimer = time.AfterFunc(g.opts.PollInterval, func() {
		g.run(g.pollCompleted)
	})
}

func (g *Grid) pollCompleted() {
	g.pollTimer = nil

	updated := false
	g.pipe.Poll(g.opts.PollBudget, func(res Completed) {
		ck := Key{ID: res.ID, Size: g.opts.ThumbWidth}
		// Inflight membership ends exactly here, when the completion is
		// consumed, success or not.
		delete(g.inflight, ck)
		updated = true

		if res.PNG == nil {
			// Absent result: the slot simply stays on its placeholder.
			return
		}
		img, err := png.Decode(bytes.NewReader(res.PNG))
		if err != nil {
			return
		}
		g.mem.Put(ck, &Thumbnail{PNG: res.PNG, Image: img})
	})

	if updated {
		g.lastKey = renderKey{}
		g.scheduler.Schedule(time.Millisecond)
	}
	g.ensurePoller()
}

func (g *Grid) notifyHover(it Item, pos fyne.Position) {
	if g.OnHover != nil {
		g.OnHover(it, pos)
	}
}

func (g *Grid) notifyHoverEnd() {
	if g.OnHoverEnd != nil {
		g.OnHoverEnd()
	}
}

// virtualLayout sizes the scroll content to the full virtual extent while
// leaving slot placement to the render pass.
type virtualLayout struct {
	grid *Grid
}

func (l *virtualLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	g := l.grid
	w := g.viewport.Columns * g.opts.CardWidth
	if w < g.opts.CardWidth {
		w = g.opts.CardWidth
	}
	h := g.viewport.ContentHeight
	if h < 1 {
		h = 1
	}
	return fyne.NewSize(float32(w), float32(h))
}

func (l *virtualLayout) Layout([]fyne.CanvasObject, fyne.Size) {
	// Slots are positioned absolutely by renderPass.
}
