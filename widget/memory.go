package widget

import (
	"desktop-overlay-manager/geometry"
)

// MemoryDriver renders nothing. It backs platforms without a native driver
// and doubles as the test harness: tests drive SimulateDrag to emit the
// geometry-changed events a user drag would produce.
type MemoryDriver struct {
	rects  []*MemoryRect
	points []*MemoryPoint
	closed bool
}

// NewMemory returns a fresh headless driver.
func NewMemory() *MemoryDriver { return &MemoryDriver{} }

// NewRect records a rectangle widget.
func (d *MemoryDriver) NewRect(r geometry.Rect, label string, style Style, onChange func(geometry.Rect)) (RectHandle, error) {
	h := &MemoryRect{Bounds: r, Label: label, Style: style, Visible: false, onChange: onChange}
	d.rects = append(d.rects, h)
	return h, nil
}

// NewPoint records a point widget.
func (d *MemoryDriver) NewPoint(p geometry.Point, label string, style Style, onChange func(geometry.Point)) (PointHandle, error) {
	h := &MemoryPoint{Pos: p, Label: label, Style: style, Visible: false, onChange: onChange}
	d.points = append(d.points, h)
	return h, nil
}

// Dispatch is a no-op; there are no native events.
func (d *MemoryDriver) Dispatch() {}

// Close marks the driver closed.
func (d *MemoryDriver) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *MemoryDriver) Closed() bool { return d.closed }

// Rects returns every rect handle ever created, destroyed ones included.
func (d *MemoryDriver) Rects() []*MemoryRect { return d.rects }

// Points returns every point handle ever created, destroyed ones included.
func (d *MemoryDriver) Points() []*MemoryPoint { return d.points }

// MemoryRect is the headless rectangle widget.
type MemoryRect struct {
	Bounds    geometry.Rect
	Label     string
	Style     Style
	Visible   bool
	Destroyed bool

	onChange func(geometry.Rect)
}

func (h *MemoryRect) Show()                     { h.Visible = true }
func (h *MemoryRect) Hide()                     { h.Visible = false }
func (h *MemoryRect) Destroy()                  { h.Destroyed = true; h.Visible = false }
func (h *MemoryRect) SetLabel(label string)     { h.Label = label }
func (h *MemoryRect) SetBounds(r geometry.Rect) { h.Bounds = r }

// SimulateDrag moves the widget as a user drag would and fires the
// geometry-changed callback.
func (h *MemoryRect) SimulateDrag(r geometry.Rect) {
	h.Bounds = r
	if h.onChange != nil {
		h.onChange(r)
	}
}

// MemoryPoint is the headless point widget.
type MemoryPoint struct {
	Pos       geometry.Point
	Label     string
	Style     Style
	Visible   bool
	Destroyed bool

	onChange func(geometry.Point)
}

func (h *MemoryPoint) Show()                   { h.Visible = true }
func (h *MemoryPoint) Hide()                   { h.Visible = false }
func (h *MemoryPoint) Destroy()                { h.Destroyed = true; h.Visible = false }
func (h *MemoryPoint) SetLabel(label string)   { h.Label = label }
func (h *MemoryPoint) SetPos(p geometry.Point) { h.Pos = p }

// SimulateDrag moves the marker as a user drag would and fires the
// geometry-changed callback.
func (h *MemoryPoint) SimulateDrag(p geometry.Point) {
	h.Pos = p
	if h.onChange != nil {
		h.onChange(p)
	}
}
