package manager

import (
	"encoding/json"
	"errors"
	"testing"

	"desktop-overlay-manager/geometry"
	"desktop-overlay-manager/registry"
	"desktop-overlay-manager/store"
	"desktop-overlay-manager/widget"
)

// newTestManager starts a manager over a temp store and a headless driver.
func newTestManager(t *testing.T, dir string) (*Manager, *widget.MemoryDriver) {
	t.Helper()
	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	drv := widget.NewMemory()
	m, err := New(Options{
		Store:     st,
		NewDriver: func() widget.Driver { return drv },
	})
	if err != nil {
		t.Fatalf("New manager: %v", err)
	}
	t.Cleanup(m.Destroy)
	return m, drv
}

func TestRegisterAndGetRect(t *testing.T) {
	m, _ := newTestManager(t, t.TempDir())

	if err := m.RegisterRect("price", RectOptions{Label: "Price"}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	g, err := m.GetRect("price")
	if err != nil {
		t.Fatalf("GetRect: %v", err)
	}
	if g != geometry.DefaultRect {
		t.Errorf("Expected default geometry %+v, got %+v", geometry.DefaultRect, g)
	}
}

func TestRegisterRectIdempotentThroughFacade(t *testing.T) {
	m, drv := newTestManager(t, t.TempDir())

	opts := RectOptions{Label: "Price", X: geometry.Int(10), Y: geometry.Int(20)}
	if err := m.RegisterRect("price", opts); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	first, err := m.GetRect("price")
	if err != nil {
		t.Fatalf("GetRect: %v", err)
	}
	if err := m.RegisterRect("price", opts); err != nil {
		t.Fatalf("RegisterRect again: %v", err)
	}
	second, err := m.GetRect("price")
	if err != nil {
		t.Fatalf("GetRect again: %v", err)
	}

	if len(drv.Rects()) != 1 {
		t.Errorf("Expected one live overlay, got %d", len(drv.Rects()))
	}
	if first != second {
		t.Errorf("Geometry changed across identical registrations: %+v vs %+v", first, second)
	}
}

func TestUnknownIDFailsHard(t *testing.T) {
	m, _ := newTestManager(t, t.TempDir())

	if _, err := m.GetPosition("nope"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := m.GetRect("nope"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDragSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	m, drv := newTestManager(t, dir)
	if err := m.RegisterRect("r", RectOptions{}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	dragged := geometry.Rect{X: 200, Y: 200, Width: 240, Height: 160}
	drv.Rects()[0].SimulateDrag(dragged)

	if g, err := m.GetRect("r"); err != nil || g != dragged {
		t.Fatalf("GetRect after drag: %+v (%v)", g, err)
	}
	m.Destroy()

	// A fresh manager over the same dir simulates a process restart.
	m2, _ := newTestManager(t, dir)
	if g, err := m2.GetRect("r"); err != nil || g != dragged {
		t.Errorf("Dragged geometry lost across restart: %+v (%v)", g, err)
	}
}

func TestSecondManagerIsRejected(t *testing.T) {
	m, _ := newTestManager(t, t.TempDir())
	_ = m

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := New(Options{Store: st, NewDriver: func() widget.Driver { return widget.NewMemory() }}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}
}

func TestManagerUsableAfterPredecessorDestroyed(t *testing.T) {
	m, _ := newTestManager(t, t.TempDir())
	m.Destroy()

	m2, _ := newTestManager(t, t.TempDir())
	if err := m2.RegisterPosition("p", PointOptions{}); err != nil {
		t.Errorf("Second manager must work after the first is destroyed: %v", err)
	}
}

func TestCallsAfterDestroyFail(t *testing.T) {
	m, _ := newTestManager(t, t.TempDir())
	m.Destroy()

	if err := m.RegisterRect("r", RectOptions{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from RegisterRect, got %v", err)
	}
	if _, err := m.GetRect("r"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from GetRect, got %v", err)
	}
	if err := m.ShowAll(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed from ShowAll, got %v", err)
	}
	// Destroy is safe to repeat.
	m.Destroy()
}

func TestHideAllShowAllThroughFacade(t *testing.T) {
	m, drv := newTestManager(t, t.TempDir())

	if err := m.RegisterRect("r", RectOptions{}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	if err := m.RegisterPosition("p", PointOptions{}); err != nil {
		t.Fatalf("RegisterPosition: %v", err)
	}
	before, err := m.GetRect("r")
	if err != nil {
		t.Fatalf("GetRect: %v", err)
	}

	if err := m.HideAll(); err != nil {
		t.Fatalf("HideAll: %v", err)
	}
	if err := m.HideAll(); err != nil {
		t.Fatalf("second HideAll: %v", err)
	}
	if drv.Rects()[0].Visible || drv.Points()[0].Visible {
		t.Error("Overlays must be hidden")
	}

	if err := m.ShowAll(); err != nil {
		t.Fatalf("ShowAll: %v", err)
	}
	if !drv.Rects()[0].Visible || !drv.Points()[0].Visible {
		t.Error("Overlays must be visible again")
	}
	if after, err := m.GetRect("r"); err != nil || after != before {
		t.Errorf("Visibility toggling altered geometry: %+v vs %+v", before, after)
	}
}

func TestPointAndRectShareIDWithoutCollision(t *testing.T) {
	m, drv := newTestManager(t, t.TempDir())

	if err := m.RegisterRect("a", RectOptions{}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	if err := m.RegisterPoint("a", PointOptions{}); err != nil {
		t.Fatalf("RegisterPoint: %v", err)
	}

	drv.Rects()[0].SimulateDrag(geometry.Rect{X: 300, Y: 300, Width: 50, Height: 50})
	drv.Points()[0].SimulateDrag(geometry.Point{X: 30, Y: 40})

	r, err := m.GetRect("a")
	if err != nil || r.X != 300 {
		t.Errorf("Rect wrong: %+v (%v)", r, err)
	}
	p, err := m.GetPosition("a")
	if err != nil || (p != geometry.Point{X: 30, Y: 40}) {
		t.Errorf("Point wrong: %+v (%v)", p, err)
	}
}

func TestPartialOverrideThroughFacade(t *testing.T) {
	dir := t.TempDir()

	m, drv := newTestManager(t, dir)
	if err := m.RegisterRect("r", RectOptions{}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	drv.Rects()[0].SimulateDrag(geometry.Rect{X: 10, Y: 10, Width: 50, Height: 50})
	m.Destroy()

	m2, _ := newTestManager(t, dir)
	if err := m2.RegisterRect("r", RectOptions{Width: geometry.Int(80)}); err != nil {
		t.Fatalf("RegisterRect with override: %v", err)
	}
	g, err := m2.GetRect("r")
	if err != nil {
		t.Fatalf("GetRect: %v", err)
	}
	want := geometry.Rect{X: 10, Y: 10, Width: 80, Height: 50}
	if g != want {
		t.Errorf("Expected %+v, got %+v", want, g)
	}
}

func TestExportLayout(t *testing.T) {
	m, drv := newTestManager(t, t.TempDir())

	if err := m.RegisterRect("r", RectOptions{}); err != nil {
		t.Fatalf("RegisterRect: %v", err)
	}
	if err := m.RegisterPosition("p", PointOptions{X: geometry.Int(5), Y: geometry.Int(6)}); err != nil {
		t.Fatalf("RegisterPosition: %v", err)
	}
	drv.Rects()[0].SimulateDrag(geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4})

	data, err := m.ExportLayout()
	if err != nil {
		t.Fatalf("ExportLayout: %v", err)
	}
	var layout registry.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if layout.Rects["r"] != (geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Errorf("Layout rect wrong: %+v", layout.Rects["r"])
	}
	if layout.Points["p"] != (geometry.Point{X: 5, Y: 6}) {
		t.Errorf("Layout point wrong: %+v", layout.Points["p"])
	}
}
