package gallery

import (
	"fmt"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

// newTestGrid builds a grid inside a test window sized for two columns.
// Marshalled timer callbacks are dropped; tests drive renderPass and
// pollCompleted directly, which mirrors how the UI goroutine runs them.
func newTestGrid(t *testing.T, src Source) *Grid {
	t.Helper()
	test.NewApp()

	pipe := NewPipeline(NewDiskCache(t.TempDir()), src, DefaultOptions())
	g := NewGrid(DefaultOptions(), pipe)
	g.run = func(func()) {}

	w := test.NewWindow(g)
	w.Resize(fyne.NewSize(2*230+20, 560))
	t.Cleanup(func() {
		g.Close()
		w.Close()
	})
	return g
}

func testItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Hash:        fmt.Sprintf("%032x", i+1),
			Path:        fmt.Sprintf(`C:\photos\img-%03d.png`, i),
			Description: fmt.Sprintf("picture %d", i),
		}
	}
	return items
}

func TestGridDedupesInflightRequests(t *testing.T) {
	block := make(chan struct{})
	g := newTestGrid(t, &fakeSource{block: block})
	t.Cleanup(func() { close(block) })

	// Three results, all resolving to the same cache key.
	shared := testItems(1)[0]
	g.items = []Item{shared, shared, shared}

	g.renderPass()
	if len(g.inflight) != 1 {
		t.Fatalf("three identical items must collapse to one request, inflight=%d", len(g.inflight))
	}

	// A second pass over the same state may not re-issue the request.
	g.lastKey = renderKey{}
	g.renderPass()
	if len(g.inflight) != 1 {
		t.Fatalf("re-render grew the inflight set to %d", len(g.inflight))
	}

	if g.request(0, shared) {
		t.Fatal("request for an inflight key must be refused")
	}
}

func TestGridMergesCompletionsIntoMemoryCache(t *testing.T) {
	items := testItems(2)
	src := &fakeSource{data: map[string][]byte{
		items[0].Hash: encodePNG(t, 400, 400),
		items[1].Hash: encodePNG(t, 300, 500),
	}}
	g := newTestGrid(t, src)

	g.items = items
	g.renderPass()
	if len(g.inflight) != 2 {
		t.Fatalf("expected two requests, inflight=%d", len(g.inflight))
	}

	// Drain the worker through poll ticks until both results land.
	deadline := time.After(5 * time.Second)
	for len(g.inflight) > 0 {
		select {
		case <-deadline:
			t.Fatal("completions never arrived")
		default:
			g.pollCompleted()
			time.Sleep(2 * time.Millisecond)
		}
	}

	for _, it := range items {
		th := g.mem.Get(Key{ID: it.CacheID(), Size: g.opts.ThumbWidth})
		if th == nil || th.Image == nil {
			t.Fatalf("no cached thumbnail for %s", it.Path)
		}
		b := th.Image.Bounds()
		if b.Dx() != g.opts.ThumbWidth || b.Dy() != g.opts.ThumbHeight() {
			t.Errorf("cached image is %dx%d, want %dx%d", b.Dx(), b.Dy(), g.opts.ThumbWidth, g.opts.ThumbHeight())
		}
	}

	// The settle render now resolves from memory and swaps images in.
	g.lastKey = renderKey{}
	g.renderPass()
	if len(g.inflight) != 0 {
		t.Fatalf("memory hits re-queued generation, inflight=%d", len(g.inflight))
	}
	if !g.slots[0].thumb.Visible() {
		t.Error("bound slot should display its cached thumbnail")
	}
}

func TestGridSuppressesImageSwapsWhileScrolling(t *testing.T) {
	items := testItems(1)
	src := &fakeSource{data: map[string][]byte{items[0].Hash: encodePNG(t, 400, 400)}}
	g := newTestGrid(t, src)
	g.items = items

	g.tracker.MarkActive()
	g.renderPass()

	if len(g.inflight) != 0 {
		t.Fatalf("active scrolling must not issue requests, inflight=%d", len(g.inflight))
	}
	s := g.slots[0]
	if s.thumb.Visible() || !s.loading.Visible() {
		t.Error("slot should hold its placeholder while scrolling")
	}
}

func TestGridQueueFullLeavesKeyRetryable(t *testing.T) {
	block := make(chan struct{})
	g := newTestGrid(t, &fakeSource{block: block})
	t.Cleanup(func() { close(block) })

	// Saturate the request queue past the stalled worker.
	for g.pipe.Enqueue(Request{ID: "deadbeefdeadbeef"}) {
	}

	g.items = testItems(1)
	g.renderPass()

	// The drop un-marks the key so a later pass can retry it.
	if len(g.inflight) != 0 {
		t.Fatalf("dropped request left %d keys marked inflight", len(g.inflight))
	}
}

func TestGridSetItemsResetsScrollAndHidesSpareSlots(t *testing.T) {
	g := newTestGrid(t, &fakeSource{})

	g.SetItems(testItems(100))
	g.renderPass()
	g.scroll.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -800}})

	g.SetItems(testItems(3))
	if g.scroll.Offset.Y != 0 {
		t.Fatalf("new result set must scroll to top, offset=%v", g.scroll.Offset.Y)
	}
	g.renderPass()

	if len(g.slots) < 4 {
		t.Fatalf("pool too small for viewport: %d slots", len(g.slots))
	}
	for i, s := range g.slots {
		if i < 3 && !s.Visible() {
			t.Errorf("slot %d should be bound and visible", i)
		}
		if i >= 3 && s.Visible() {
			t.Errorf("slot %d has no item and should be hidden", i)
		}
	}
}
