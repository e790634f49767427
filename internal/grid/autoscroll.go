package grid

const (
	DefaultScrollSpeed  = 30.0
	DefaultScrollMargin = 60.0
)

// Rect is the vertical extent of the rendered viewport, in the same units as
// the pointer position and the scroll offset.
type Rect struct {
	MinY float64
	MaxY float64
}

// AutoScroll computes how far to scroll the viewport while a drag selection
// is active and the pointer is close to the top or bottom edge. It holds no
// state besides its configuration and the last scroll offset reported by the
// renderer.
type AutoScroll struct {
	Enabled bool
	// MaxSpeed caps how much the offset may change in a single frame.
	MaxSpeed float64
	// Margin is the distance from an edge where scrolling starts.
	Margin float64

	offset float64
}

// NewAutoScroll returns an AutoScroll with the default speed and margin.
func NewAutoScroll(enabled bool) AutoScroll {
	return AutoScroll{
		Enabled:  enabled,
		MaxSpeed: DefaultScrollSpeed,
		Margin:   DefaultScrollMargin,
	}
}

// WithMaxSpeed returns a copy with a different speed cap.
func (a AutoScroll) WithMaxSpeed(speed float64) AutoScroll {
	a.MaxSpeed = speed
	return a
}

// WithMargin returns a copy with a different edge margin.
func (a AutoScroll) WithMargin(margin float64) AutoScroll {
	a.Margin = margin
	return a
}

// SetScrollOffset records the vertical offset the renderer actually used in
// the last frame, so the next computed offset builds on it.
func (a *AutoScroll) SetScrollOffset(y float64) {
	a.offset = y
}

// ScrollOffset returns the last offset reported by the renderer.
func (a *AutoScroll) ScrollOffset() float64 {
	return a.offset
}

// Offset returns the new vertical scroll offset for a pointer at pointerY
// inside rect. The second result is false when no scrolling should happen:
// autoscroll is disabled, the pointer is absent, or it is outside both edge
// margins.
func (a *AutoScroll) Offset(rect Rect, pointerY *float64) (float64, bool) {
	if !a.Enabled || pointerY == nil || a.MaxSpeed <= 0 {
		return a.offset, false
	}
	margin := a.Margin
	if height := rect.MaxY - rect.MinY; margin > height/2 {
		margin = height / 2
	}
	if margin <= 0 {
		return a.offset, false
	}
	y := *pointerY

	var delta float64
	switch top, bottom := rect.MinY+margin, rect.MaxY-margin; {
	case y < top:
		delta = -a.MaxSpeed * min((top-y)/margin, 1)
	case y > bottom:
		delta = a.MaxSpeed * min((y-bottom)/margin, 1)
	default:
		return a.offset, false
	}

	next := max(a.offset+delta, 0)
	if next == a.offset {
		return a.offset, false
	}
	return next, true
}

// AutoScrollOffset returns the vertical offset the renderer should scroll to
// this frame. It only moves while a drag is in progress.
func (t *Table[R, F]) AutoScrollOffset(rect Rect, pointerY *float64) (float64, bool) {
	if !t.IsDragging() {
		return t.autoScroll.offset, false
	}
	return t.autoScroll.Offset(rect, pointerY)
}

// SetScrollOffset records the vertical offset the renderer used in the last
// frame.
func (t *Table[R, F]) SetScrollOffset(y float64) {
	t.autoScroll.SetScrollOffset(y)
}

// ScrollOffset returns the last vertical offset reported by the renderer.
func (t *Table[R, F]) ScrollOffset() float64 {
	return t.autoScroll.offset
}
