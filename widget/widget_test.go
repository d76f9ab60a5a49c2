package widget

import (
	"strings"
	"testing"

	"desktop-overlay-manager/geometry"
)

func TestValidateRectStyle(t *testing.T) {
	style := Style{"border_color": "#FF0000", "alpha": 0.3, "resizable": true}
	if err := ValidateRectStyle(style, true); err != nil {
		t.Errorf("Recognized options rejected: %v", err)
	}

	bad := Style{"blink": true, "animate": "fast"}
	err := ValidateRectStyle(bad, true)
	if err == nil {
		t.Fatal("Strict validation must reject unknown options")
	}
	// Both offenders are named for the caller.
	if !strings.Contains(err.Error(), "animate") || !strings.Contains(err.Error(), "blink") {
		t.Errorf("Error must name the unknown options, got %q", err)
	}

	// Lenient mode logs and accepts, preserving compatibility with callers
	// that pass arbitrary options through.
	if err := ValidateRectStyle(bad, false); err != nil {
		t.Errorf("Lenient validation must accept unknown options, got %v", err)
	}
}

func TestValidatePointStyle(t *testing.T) {
	if err := ValidatePointStyle(Style{"point_color": "#00FF00", "point_radius": 6}, true); err != nil {
		t.Errorf("Recognized options rejected: %v", err)
	}
	// resize options belong to rects only
	if err := ValidatePointStyle(Style{"resizable": true}, true); err == nil {
		t.Error("Point style must not accept rect-only options in strict mode")
	}
}

func TestMemoryDriverLifecycle(t *testing.T) {
	d := NewMemory()

	var got geometry.Rect
	h, err := d.NewRect(geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}, "r", nil, func(g geometry.Rect) { got = g })
	if err != nil {
		t.Fatalf("NewRect: %v", err)
	}
	h.Show()
	if !d.Rects()[0].Visible {
		t.Error("Show must mark the widget visible")
	}

	dragged := geometry.Rect{X: 9, Y: 9, Width: 9, Height: 9}
	d.Rects()[0].SimulateDrag(dragged)
	if got != dragged {
		t.Errorf("Drag callback got %+v, want %+v", got, dragged)
	}

	h.Destroy()
	if !d.Rects()[0].Destroyed || d.Rects()[0].Visible {
		t.Error("Destroy must tear the widget down")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !d.Closed() {
		t.Error("Close must mark the driver closed")
	}
}

func TestStyleReaders(t *testing.T) {
	style := Style{
		"border_color": "#123456",
		"border_width": 3,
		"alpha":        0.5,
		"draggable":    false,
		"point_radius": float64(7), // JSON-decoded numbers arrive as float64
	}
	if v := styleString(style, "border_color", "#FF0000"); v != "#123456" {
		t.Errorf("styleString: %q", v)
	}
	if v := styleString(style, "missing", "#FF0000"); v != "#FF0000" {
		t.Errorf("styleString default: %q", v)
	}
	if v := styleInt(style, "border_width", 2); v != 3 {
		t.Errorf("styleInt: %d", v)
	}
	if v := styleInt(style, "point_radius", 2); v != 7 {
		t.Errorf("styleInt from float64: %d", v)
	}
	if v := styleBool(style, "draggable", true); v {
		t.Error("styleBool must read explicit false")
	}
	if v := styleFloat(style, "alpha", 0.3); v != 0.5 {
		t.Errorf("styleFloat: %v", v)
	}
	if v := styleFloat(style, "missing", 0.3); v != 0.3 {
		t.Errorf("styleFloat default: %v", v)
	}
}
