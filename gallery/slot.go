package gallery

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	slotPadding      = 8
	hoverTooltipWait = time.Second
)

// slot is one reusable card of the grid pool. Slots are allocated once per
// pool rebuild and rebound to a result index on every render pass; they are
// never created per item.
type slot struct {
	widget.BaseWidget
	grid *Grid

	index int
	item  Item
	bound bool

	bg      *canvas.Rectangle
	thumb   *canvas.Image
	loading *canvas.Text
	label   *widget.Label

	hoverTimer *time.Timer
	hoverPos   fyne.Position
}

func newSlot(g *Grid) *slot {
	s := &slot{
		grid:    g,
		index:   -1,
		bg:      canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		thumb:   canvas.NewImageFromImage(nil),
		loading: canvas.NewText("Loading", theme.Color(theme.ColorNamePlaceHolder)),
		label:   widget.NewLabel(""),
	}
	s.bg.StrokeColor = theme.Color(theme.ColorNameSeparator)
	s.bg.StrokeWidth = 1
	s.thumb.FillMode = canvas.ImageFillContain
	s.thumb.Hide()
	s.loading.Alignment = fyne.TextAlignCenter
	s.loading.Hide()
	s.label.Truncation = fyne.TextTruncateEllipsis
	s.ExtendBaseWidget(s)
	return s
}

func (s *slot) CreateRenderer() fyne.WidgetRenderer {
	return &slotRenderer{slot: s}
}

// bind attaches the slot to a result. The label only updates when the path
// actually changed, which keeps re-renders of an unchanged range cheap.
func (s *slot) bind(index int, it Item) {
	s.index = index
	if !s.bound || s.item.Path != it.Path {
		s.label.SetText(it.Path)
	}
	s.item = it
	s.bound = true
}

// showThumb swaps the rendered image in and hides the placeholder.
func (s *slot) showThumb(img image.Image) {
	s.thumb.Image = img
	s.loading.Hide()
	s.thumb.Show()
	s.thumb.Refresh()
}

// showPlaceholder blanks the image area. Used on cache misses and while
// scrolling is active, when image swapping is suppressed to avoid tearing.
func (s *slot) showPlaceholder() {
	s.thumb.Image = nil
	s.thumb.Hide()
	s.loading.Show()
	s.loading.Refresh()
}

func (s *slot) DoubleTapped(*fyne.PointEvent) {
	if s.bound && s.grid.OnOpen != nil {
		s.grid.OnOpen(s.item)
	}
}

func (s *slot) Tapped(*fyne.PointEvent) {}

var _ fyne.DoubleTappable = (*slot)(nil)
var _ desktop.Hoverable = (*slot)(nil)

func (s *slot) MouseIn(e *desktop.MouseEvent) {
	s.armHover(e)
}

// MouseMoved restarts the hover delay so the tooltip only appears once the
// pointer rests.
func (s *slot) MouseMoved(e *desktop.MouseEvent) {
	s.armHover(e)
}

func (s *slot) MouseOut() {
	s.cancelHover()
	s.grid.notifyHoverEnd()
}

func (s *slot) armHover(e *desktop.MouseEvent) {
	s.cancelHover()
	if !s.bound {
		return
	}
	s.hoverPos = e.AbsolutePosition
	s.hoverTimer = time.AfterFunc(hoverTooltipWait, func() {
		s.grid.run(func() {
			if s.bound {
				s.grid.notifyHover(s.item, s.hoverPos)
			}
		})
	})
}

func (s *slot) cancelHover() {
	if s.hoverTimer != nil {
		s.hoverTimer.Stop()
		s.hoverTimer = nil
	}
}

type slotRenderer struct {
	slot *slot
}

func (r *slotRenderer) Layout(size fyne.Size) {
	s := r.slot
	s.bg.Resize(size)
	s.bg.Move(fyne.NewPos(0, 0))

	thumbW := size.Width - slotPadding*2
	if thumbW < 1 {
		thumbW = 1
	}
	thumbH := thumbW * 9 / 16

	s.thumb.Resize(fyne.NewSize(thumbW, thumbH))
	s.thumb.Move(fyne.NewPos(slotPadding, slotPadding))

	s.loading.Resize(fyne.NewSize(thumbW, s.loading.MinSize().Height))
	s.loading.Move(fyne.NewPos(slotPadding, slotPadding+(thumbH-s.loading.MinSize().Height)/2))

	labelH := size.Height - (slotPadding + thumbH)
	if labelH < 0 {
		labelH = 0
	}
	s.label.Resize(fyne.NewSize(thumbW, labelH))
	s.label.Move(fyne.NewPos(slotPadding, slotPadding+thumbH))
}

func (r *slotRenderer) MinSize() fyne.Size {
	g := r.slot.grid
	return fyne.NewSize(float32(g.opts.CardWidth-slotPadding*2), float32(g.opts.CardHeight-slotPadding*2))
}

func (r *slotRenderer) Refresh() {
	s := r.slot
	s.bg.Refresh()
	s.thumb.Refresh()
	s.loading.Refresh()
	s.label.Refresh()
}

func (r *slotRenderer) Objects() []fyne.CanvasObject {
	s := r.slot
	return []fyne.CanvasObject{s.bg, s.thumb, s.loading, s.label}
}

func (r *slotRenderer) Destroy() {
	r.slot.cancelHover()
}
