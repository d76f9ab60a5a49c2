package geometry

import (
	"errors"
	"testing"
)

func TestRectValidate(t *testing.T) {
	if err := (Rect{X: 0, Y: 0, Width: 1, Height: 1}).Validate(); err != nil {
		t.Errorf("Expected 1x1 rect to be valid, got %v", err)
	}
	for _, r := range []Rect{
		{Width: 0, Height: 10},
		{Width: 10, Height: 0},
		{Width: -5, Height: 10},
	} {
		err := r.Validate()
		if !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("Expected ErrInvalidGeometry for %+v, got %v", r, err)
		}
	}
}

func TestRectPatchAppliesFieldByField(t *testing.T) {
	base := Rect{X: 10, Y: 10, Width: 50, Height: 50}
	got := RectPatch{Width: Int(80)}.ApplyTo(base)
	want := Rect{X: 10, Y: 10, Width: 80, Height: 50}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	got = RectPatch{X: Int(1), Y: Int(2), Width: Int(3), Height: Int(4)}.ApplyTo(base)
	want = Rect{X: 1, Y: 2, Width: 3, Height: 4}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if got := (RectPatch{}).ApplyTo(base); got != base {
		t.Errorf("Empty patch must keep base, got %+v", got)
	}
}

func TestRectPatchValidate(t *testing.T) {
	if err := (RectPatch{Width: Int(0)}).Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry for zero width, got %v", err)
	}
	if err := (RectPatch{Height: Int(-1)}).Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry for negative height, got %v", err)
	}
	// Unset dimensions resolve later; they are not the patch's problem.
	if err := (RectPatch{X: Int(-100)}).Validate(); err != nil {
		t.Errorf("Negative position must be allowed, got %v", err)
	}
}

func TestPointPatch(t *testing.T) {
	base := Point{X: 160, Y: 160}
	got := PointPatch{Y: Int(40)}.ApplyTo(base)
	want := Point{X: 160, Y: 40}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if !(PointPatch{}).IsZero() {
		t.Error("Empty patch must report IsZero")
	}
}

func TestClampRect(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	r := ClampRect(Rect{X: -500, Y: 2000, Width: 240, Height: 160}, bounds)
	if r.X != 0 || r.Y != 1079 {
		t.Errorf("Expected clamped origin (0,1079), got (%d,%d)", r.X, r.Y)
	}
	if r.Width != 240 || r.Height != 160 {
		t.Errorf("Clamping must not alter size, got %dx%d", r.Width, r.Height)
	}

	// Zero bounds (headless) disables clamping.
	r = ClampRect(Rect{X: -500, Y: 2000, Width: 240, Height: 160}, Rect{})
	if r.X != -500 || r.Y != 2000 {
		t.Errorf("Expected no clamping without bounds, got (%d,%d)", r.X, r.Y)
	}
}
