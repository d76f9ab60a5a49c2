package registry

import (
	"log"

	"desktop-overlay-manager/geometry"
	"desktop-overlay-manager/store"
)

// Layout is everything the registry knows about geometry, live overlays
// taking precedence over store-only entries.
type Layout struct {
	Rects  map[string]geometry.Rect  `json:"rects"`
	Points map[string]geometry.Point `json:"points"`
}

// Snapshot collects current geometry across live records and the store.
func (r *Registry) Snapshot() Layout {
	layout := Layout{
		Rects:  map[string]geometry.Rect{},
		Points: map[string]geometry.Point{},
	}
	snap, err := r.store.Load()
	if err != nil {
		log.Printf("registry: snapshot store load failed: %v", err)
		snap = store.Snapshot{}
	}
	for id, e := range snap[store.KindRect] {
		layout.Rects[id] = e.Rect()
	}
	for id, e := range snap[store.KindPoint] {
		layout.Points[id] = e.Point()
	}
	for id, rec := range r.rects {
		layout.Rects[id] = rec.Bounds
	}
	for id, rec := range r.points {
		layout.Points[id] = rec.Pos
	}
	return layout
}

func logSaveError(kind store.Kind, id string, err error) {
	log.Printf("registry: persist %s %q failed: %v", kind, id, err)
}
