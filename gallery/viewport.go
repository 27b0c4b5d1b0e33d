package gallery

// Viewport is the visible slice of the virtual grid.
type Viewport struct {
	FirstRow      int
	Columns       int
	VisibleRows   int // includes overscan
	ContentHeight int // full virtual height in px
}

// ComputeViewport maps a scroll offset and viewport size onto grid rows.
// It is a pure function; the grid calls it on every render pass and tests
// exercise it directly.
//
// Columns is the number of whole cards that fit the width (at least one).
// VisibleRows carries two overscan rows so fast scrolling does not flash
// blank cards. ContentHeight sizes the scroll range without materializing
// the items.
func ComputeViewport(offsetPx, viewWidth, viewHeight, itemCount, cardWidth, cardHeight int) Viewport {
	if cardWidth < 1 {
		cardWidth = 1
	}
	if cardHeight < 1 {
		cardHeight = 1
	}

	cols := viewWidth / cardWidth
	if cols < 1 {
		cols = 1
	}

	rows := viewHeight/cardHeight + 2
	if rows < 1 {
		rows = 1
	}

	firstRow := offsetPx / cardHeight
	if firstRow < 0 {
		firstRow = 0
	}

	totalRows := 0
	if itemCount > 0 {
		totalRows = (itemCount + cols - 1) / cols
	}

	return Viewport{
		FirstRow:      firstRow,
		Columns:       cols,
		VisibleRows:   rows,
		ContentHeight: totalRows * cardHeight,
	}
}

// RowRange returns the first and one-past-last item index covered by the
// viewport plus buffer rows on both sides, clamped to the item count.
func (v Viewport) RowRange(itemCount, bufferRows int) (start, end int) {
	if itemCount == 0 {
		return 0, 0
	}
	startRow := v.FirstRow - bufferRows
	if startRow < 0 {
		startRow = 0
	}
	lastRow := (itemCount+v.Columns-1)/v.Columns - 1
	endRow := v.FirstRow + v.VisibleRows + bufferRows
	if endRow > lastRow {
		endRow = lastRow
	}
	start = startRow * v.Columns
	end = (endRow + 1) * v.Columns
	if end > itemCount {
		end = itemCount
	}
	return start, end
}
