package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"desktop-overlay-manager/geometry"
	"desktop-overlay-manager/store"
)

func TestDumpMatchesFileSections(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	rect := geometry.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	if err := st.Save(store.KindRect, "r", store.RectEntry(rect, store.Entry{})); err != nil {
		t.Fatalf("Save rect: %v", err)
	}
	point := geometry.Point{X: 30, Y: 40}
	if err := st.Save(store.KindPoint, "p", store.PointEntry(point, store.Entry{})); err != nil {
		t.Fatalf("Save point: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd(&ctlOptions{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"dump", "--config-dir", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("dump: %v", err)
	}

	var layout struct {
		Rects  map[string]store.Entry `json:"rects"`
		Points map[string]store.Entry `json:"points"`
	}
	if err := json.Unmarshal(out.Bytes(), &layout); err != nil {
		t.Fatalf("decode dump output: %v", err)
	}
	if e, ok := layout.Rects["r"]; !ok || e.Rect() != rect {
		t.Errorf("Expected rect %+v under \"rects\", got %+v (found=%v)", rect, e.Rect(), ok)
	}
	if e, ok := layout.Points["p"]; !ok || e.Point() != point {
		t.Errorf("Expected point %+v under \"points\", got %+v (found=%v)", point, e.Point(), ok)
	}
}
