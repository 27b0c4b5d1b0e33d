// Package gallery implements the virtualized thumbnail grid: a bounded
// in-memory LRU cache, a persistent disk cache, a background generation
// pipeline with request deduplication, and the scheduling glue that keeps
// scrolling smooth over large result sets.
package gallery

import (
	"image"
	"time"
)

// Item is one entry of the result set shown by the grid. The slice order
// given to SetItems defines the virtual layout order.
type Item struct {
	Hash        string // content hash; stable across file moves. May be empty.
	Path        string // display path; also the cache fallback when Hash is empty.
	Description string
}

// CacheID returns the identifier thumbnails are cached under. The content
// hash is preferred because it survives file moves.
func (it Item) CacheID() string {
	if it.Hash != "" {
		return it.Hash
	}
	return it.Path
}

// Key addresses a rendered thumbnail in both cache tiers.
type Key struct {
	ID   string
	Size int
}

// Request asks the pipeline to produce a thumbnail for one result.
type Request struct {
	Index int
	Path  string
	ID    string
}

// Completed is the pipeline's answer to a Request. A nil PNG means the
// source had no data or generation failed; the key is then eligible for a
// fresh attempt on a later render pass.
type Completed struct {
	Index int
	Path  string
	ID    string
	PNG   []byte
}

// Thumbnail is a rendered cover-crop. PNG is the canonical encoded form
// (what the disk cache holds); Image is the same data decoded once so slot
// binds don't re-decode on every pass.
type Thumbnail struct {
	PNG   []byte
	Image image.Image
}

// Options tunes the grid and its caches. Zero fields fall back to the
// defaults below.
type Options struct {
	CacheCapacity  int // max MemoryCache entries
	ThumbWidth     int // width bound of the 16:9 cover box
	CardWidth      int
	CardHeight     int
	PrefetchRows   int // buffer rows requested beyond the viewport
	PrefetchBudget int // max prefetch requests per render pass
	PollBudget     int // max completions drained per poll tick

	RenderMinInterval time.Duration
	ScrollIdleTimeout time.Duration
	PollInterval      time.Duration
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		CacheCapacity:     350,
		ThumbWidth:        200,
		CardWidth:         230,
		CardHeight:        270,
		PrefetchRows:      3,
		PrefetchBudget:    80,
		PollBudget:        40,
		RenderMinInterval: time.Second / 30,
		ScrollIdleTimeout: 540 * time.Millisecond,
		PollInterval:      30 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = def.CacheCapacity
	}
	if o.ThumbWidth <= 0 {
		o.ThumbWidth = def.ThumbWidth
	}
	if o.CardWidth <= 0 {
		o.CardWidth = def.CardWidth
	}
	if o.CardHeight <= 0 {
		o.CardHeight = def.CardHeight
	}
	if o.PrefetchRows <= 0 {
		o.PrefetchRows = def.PrefetchRows
	}
	if o.PrefetchBudget <= 0 {
		o.PrefetchBudget = def.PrefetchBudget
	}
	if o.PollBudget <= 0 {
		o.PollBudget = def.PollBudget
	}
	if o.RenderMinInterval <= 0 {
		o.RenderMinInterval = def.RenderMinInterval
	}
	if o.ScrollIdleTimeout <= 0 {
		o.ScrollIdleTimeout = def.ScrollIdleTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	return o
}

// ThumbHeight returns the 16:9 height matching the width bound.
func (o Options) ThumbHeight() int {
	return o.ThumbWidth * 9 / 16
}
