package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/hardtopnet/image-desc-search/gallery"
)

const tooltipMaxWidth = 600

// tooltip is the hover popup showing an item's path and description.
// One popup is reused for every slot; the grid's hover callbacks drive it.
type tooltip struct {
	canvas fyne.Canvas
	popup  *widget.PopUp
	path   *widget.Label
	desc   *widget.Label
}

func newTooltip(c fyne.Canvas) *tooltip {
	t := &tooltip{canvas: c}
	t.path = widget.NewLabel("")
	t.path.TextStyle = fyne.TextStyle{Bold: true}
	t.desc = widget.NewLabel("")
	t.desc.Wrapping = fyne.TextWrapWord
	t.popup = widget.NewPopUp(container.NewVBox(t.path, t.desc), c)
	return t
}

func (t *tooltip) show(it gallery.Item, pos fyne.Position) {
	t.path.SetText(it.Path)
	t.desc.SetText(it.Description)

	width := t.popup.MinSize().Width
	if width > tooltipMaxWidth {
		width = tooltipMaxWidth
	}
	t.popup.Resize(fyne.NewSize(width, t.popup.MinSize().Height))

	// Below-right of the pointer, clamped onto the canvas.
	at := pos.Add(fyne.NewPos(12, 16))
	size := t.canvas.Size()
	if at.X+width > size.Width {
		at.X = size.Width - width
	}
	if at.X < 0 {
		at.X = 0
	}
	if at.Y+t.popup.MinSize().Height > size.Height {
		at.Y = pos.Y - t.popup.MinSize().Height - 18
	}
	if at.Y < 0 {
		at.Y = 0
	}
	t.popup.ShowAtPosition(at)
}

func (t *tooltip) hide() {
	t.popup.Hide()
}
