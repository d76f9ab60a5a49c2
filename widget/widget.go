// Package widget is the rendering capability boundary. The registry depends
// on these interfaces; how pixels are drawn and dragged is a driver concern.
package widget

import (
	"fmt"
	"log"
	"sort"

	"desktop-overlay-manager/geometry"
)

// Style carries presentation options by name. Values are driver-interpreted;
// unrecognized keys are logged and ignored unless strict validation is on.
type Style map[string]any

// Handle is the common control surface of one on-screen overlay. All calls
// must come from the event-loop goroutine.
type Handle interface {
	Show()
	Hide()
	Destroy()
	SetLabel(label string)
}

// RectHandle controls a rectangle overlay. SetBounds repositions without
// firing the geometry-changed callback.
type RectHandle interface {
	Handle
	SetBounds(r geometry.Rect)
}

// PointHandle controls a point marker. SetPos repositions without firing the
// geometry-changed callback.
type PointHandle interface {
	Handle
	SetPos(p geometry.Point)
}

// Driver creates overlay widgets and pumps their native events. Exactly one
// driver is live per process, owned by the manager's event loop.
type Driver interface {
	NewRect(r geometry.Rect, label string, style Style, onChange func(geometry.Rect)) (RectHandle, error)
	NewPoint(p geometry.Point, label string, style Style, onChange func(geometry.Point)) (PointHandle, error)

	// Dispatch processes pending native events without blocking. Drivers
	// deliver geometry-changed callbacks from inside Dispatch, in the order
	// the drag interactions occurred.
	Dispatch()

	Close() error
}

// New returns the platform driver: native overlay windows where supported,
// the headless driver elsewhere.
func New() Driver { return newPlatformDriver() }

// Recognized style options per overlay kind. The table is the contract;
// individual drivers may ignore options they cannot express.
var (
	rectStyleKeys = map[string]bool{
		"border_color":       true,
		"border_width":       true,
		"bg_color":           true,
		"label_bg":           true,
		"label_fg":           true,
		"label_font_size":    true,
		"alpha":              true,
		"draggable":          true,
		"resizable":          true,
		"resize_handle_size": true,
	}
	pointStyleKeys = map[string]bool{
		"point_color":     true,
		"point_radius":    true,
		"label_bg":        true,
		"label_fg":        true,
		"label_font_size": true,
		"alpha":           true,
		"draggable":       true,
	}
)

// ValidateRectStyle checks style keys against the rect options table.
func ValidateRectStyle(style Style, strict bool) error {
	return validateStyle("rect", style, rectStyleKeys, strict)
}

// ValidatePointStyle checks style keys against the point options table.
func ValidatePointStyle(style Style, strict bool) error {
	return validateStyle("point", style, pointStyleKeys, strict)
}

func validateStyle(kind string, style Style, known map[string]bool, strict bool) error {
	var unknown []string
	for k := range style {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	if strict {
		return fmt.Errorf("widget: unrecognized %s style options %v", kind, unknown)
	}
	log.Printf("widget: ignoring unrecognized %s style options %v", kind, unknown)
	return nil
}

// styleString reads a string option with a fallback.
func styleString(style Style, key, def string) string {
	if v, ok := style[key].(string); ok && v != "" {
		return v
	}
	return def
}

// styleInt reads an int option with a fallback. JSON-decoded styles arrive
// as float64, so both are accepted.
func styleInt(style Style, key string, def int) int {
	switch v := style[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// styleBool reads a bool option with a fallback.
func styleBool(style Style, key string, def bool) bool {
	if v, ok := style[key].(bool); ok {
		return v
	}
	return def
}

// styleFloat reads a float option with a fallback.
func styleFloat(style Style, key string, def float64) float64 {
	switch v := style[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}
