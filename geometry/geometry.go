// Package geometry holds the placement types shared by the registry,
// the durable store, and the widget drivers.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry reports a rectangle with non-positive width or height.
var ErrInvalidGeometry = errors.New("geometry: invalid geometry")

// Rect is an overlay rectangle in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is an overlay anchor marker in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Defaults used when an overlay has neither explicit nor stored geometry.
var (
	DefaultRect  = Rect{X: 120, Y: 120, Width: 240, Height: 160}
	DefaultPoint = Point{X: 160, Y: 160}
)

// Validate checks the rectangle invariant: width and height are positive.
func (r Rect) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: width=%d height=%d", ErrInvalidGeometry, r.Width, r.Height)
	}
	return nil
}

// RectPatch is a partial rectangle override. Nil fields keep the base value;
// overrides apply field by field, never all-or-nothing.
type RectPatch struct {
	X      *int
	Y      *int
	Width  *int
	Height *int
}

// IsZero reports whether no field is set.
func (p RectPatch) IsZero() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil
}

// ApplyTo overlays the set fields of p onto base.
func (p RectPatch) ApplyTo(base Rect) Rect {
	if p.X != nil {
		base.X = *p.X
	}
	if p.Y != nil {
		base.Y = *p.Y
	}
	if p.Width != nil {
		base.Width = *p.Width
	}
	if p.Height != nil {
		base.Height = *p.Height
	}
	return base
}

// Validate rejects explicitly supplied non-positive dimensions. Unset fields
// are not checked; they resolve from stored or default geometry.
func (p RectPatch) Validate() error {
	if p.Width != nil && *p.Width <= 0 {
		return fmt.Errorf("%w: width=%d", ErrInvalidGeometry, *p.Width)
	}
	if p.Height != nil && *p.Height <= 0 {
		return fmt.Errorf("%w: height=%d", ErrInvalidGeometry, *p.Height)
	}
	return nil
}

// PointPatch is a partial point override.
type PointPatch struct {
	X *int
	Y *int
}

// IsZero reports whether no field is set.
func (p PointPatch) IsZero() bool {
	return p.X == nil && p.Y == nil
}

// ApplyTo overlays the set fields of p onto base.
func (p PointPatch) ApplyTo(base Point) Point {
	if p.X != nil {
		base.X = *p.X
	}
	if p.Y != nil {
		base.Y = *p.Y
	}
	return base
}

// ClampRect shifts r so its top-left corner lies inside bounds. Size is never
// altered. A zero-size bounds disables clamping (headless environments).
func ClampRect(r Rect, bounds Rect) Rect {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return r
	}
	r.X = clamp(r.X, bounds.X, bounds.X+bounds.Width-1)
	r.Y = clamp(r.Y, bounds.Y, bounds.Y+bounds.Height-1)
	return r
}

// ClampPoint shifts p inside bounds. A zero-size bounds disables clamping.
func ClampPoint(p Point, bounds Rect) Point {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return p
	}
	p.X = clamp(p.X, bounds.X, bounds.X+bounds.Width-1)
	p.Y = clamp(p.Y, bounds.Y, bounds.Y+bounds.Height-1)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Int returns a pointer to v, for building patches inline.
func Int(v int) *int { return &v }
