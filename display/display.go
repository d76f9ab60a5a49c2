// Package display reports where overlays can physically appear.
package display

import (
	"github.com/kbinani/screenshot"

	"desktop-overlay-manager/geometry"
)

// VirtualBounds returns the union of all active display bounds. With no
// display attached (headless CI, remote sessions) it returns a zero rect,
// which disables geometry clamping.
func VirtualBounds() geometry.Rect {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return geometry.Rect{}
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return geometry.Rect{
		X:      union.Min.X,
		Y:      union.Min.Y,
		Width:  union.Dx(),
		Height: union.Dy(),
	}
}
