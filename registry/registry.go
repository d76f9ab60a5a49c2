// Package registry tracks the live overlays and reconciles their geometry
// with the durable store. All methods must run on the event-loop goroutine;
// the registry itself takes no locks.
package registry

import (
	"errors"
	"fmt"

	"desktop-overlay-manager/geometry"
	"desktop-overlay-manager/store"
	"desktop-overlay-manager/widget"
)

// ErrNotFound reports a query for an id that was never registered and has no
// persisted geometry. Callers that want a default must register first.
var ErrNotFound = errors.New("registry: overlay not found")

// RectRecord is one live rectangle overlay.
type RectRecord struct {
	ID      string
	Label   string
	Bounds  geometry.Rect
	Style   widget.Style
	Visible bool

	handle widget.RectHandle
}

// PointRecord is one live point marker.
type PointRecord struct {
	ID      string
	Label   string
	Pos     geometry.Point
	Style   widget.Style
	Visible bool

	handle widget.PointHandle
}

// Registry owns the live overlay set. Rect and point ids live in separate
// namespaces, matching the store.
type Registry struct {
	driver widget.Driver
	store  store.Store
	bounds func() geometry.Rect

	strictStyle bool

	rects  map[string]*RectRecord
	points map[string]*PointRecord
}

// Option configures a Registry.
type Option func(*Registry)

// WithBounds supplies the screen bounds used to clamp resolved geometry.
func WithBounds(fn func() geometry.Rect) Option {
	return func(r *Registry) { r.bounds = fn }
}

// WithStrictStyle makes unrecognized style options an error instead of a
// logged warning.
func WithStrictStyle(strict bool) Option {
	return func(r *Registry) { r.strictStyle = strict }
}

// New creates an empty registry over the given driver and store.
func New(driver widget.Driver, st store.Store, opts ...Option) *Registry {
	r := &Registry{
		driver: driver,
		store:  st,
		bounds: func() geometry.Rect { return geometry.Rect{} },
		rects:  map[string]*RectRecord{},
		points: map[string]*PointRecord{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureRect creates or re-shows the rectangle overlay for id. Calling it
// twice with the same id never creates a second overlay; label and style are
// replaced, not merged. Geometry resolves explicit patch fields first, then
// the stored entry, then the built-in default, field by field.
func (r *Registry) EnsureRect(id, label string, patch geometry.RectPatch, style widget.Style) (*RectRecord, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := widget.ValidateRectStyle(style, r.strictStyle); err != nil {
		return nil, err
	}
	resolved := r.resolveRect(id, patch)

	if rec, ok := r.rects[id]; ok {
		rec.Label = displayLabel(label, id)
		rec.Style = style
		rec.Bounds = resolved
		rec.handle.SetBounds(resolved)
		rec.handle.SetLabel(rec.Label)
		rec.handle.Show()
		rec.Visible = true
		return rec, nil
	}

	rec := &RectRecord{ID: id, Label: displayLabel(label, id), Bounds: resolved, Style: style}
	handle, err := r.driver.NewRect(resolved, rec.Label, style, func(g geometry.Rect) {
		r.rectChanged(id, g)
	})
	if err != nil {
		return nil, fmt.Errorf("registry: create rect %q: %w", id, err)
	}
	rec.handle = handle
	r.rects[id] = rec
	handle.Show()
	rec.Visible = true
	return rec, nil
}

// EnsurePoint creates or re-shows the point marker for id.
func (r *Registry) EnsurePoint(id, label string, patch geometry.PointPatch, style widget.Style) (*PointRecord, error) {
	if err := widget.ValidatePointStyle(style, r.strictStyle); err != nil {
		return nil, err
	}
	resolved := r.resolvePoint(id, patch)

	if rec, ok := r.points[id]; ok {
		rec.Label = displayLabel(label, id)
		rec.Style = style
		rec.Pos = resolved
		rec.handle.SetPos(resolved)
		rec.handle.SetLabel(rec.Label)
		rec.handle.Show()
		rec.Visible = true
		return rec, nil
	}

	rec := &PointRecord{ID: id, Label: displayLabel(label, id), Pos: resolved, Style: style}
	handle, err := r.driver.NewPoint(resolved, rec.Label, style, func(p geometry.Point) {
		r.pointChanged(id, p)
	})
	if err != nil {
		return nil, fmt.Errorf("registry: create point %q: %w", id, err)
	}
	rec.handle = handle
	r.points[id] = rec
	handle.Show()
	rec.Visible = true
	return rec, nil
}

func (r *Registry) resolveRect(id string, patch geometry.RectPatch) geometry.Rect {
	base := geometry.DefaultRect
	if e, ok := r.store.Get(store.KindRect, id); ok {
		base = e.Rect()
	}
	return geometry.ClampRect(patch.ApplyTo(base), r.bounds())
}

func (r *Registry) resolvePoint(id string, patch geometry.PointPatch) geometry.Point {
	base := geometry.DefaultPoint
	if e, ok := r.store.Get(store.KindPoint, id); ok {
		base = e.Point()
	}
	return geometry.ClampPoint(patch.ApplyTo(base), r.bounds())
}

// rectChanged handles a geometry-changed event from a drag or resize. The
// in-memory record updates first; the store write happens only after, so a
// geometry under mutation is never partially persisted.
func (r *Registry) rectChanged(id string, g geometry.Rect) {
	rec, ok := r.rects[id]
	if !ok {
		return
	}
	rec.Bounds = g
	prev, _ := r.store.Get(store.KindRect, id)
	if err := r.store.Save(store.KindRect, id, store.RectEntry(g, prev)); err != nil {
		// The visible overlay stays authoritative; persistence catches up on
		// the next successful save.
		logSaveError(store.KindRect, id, err)
	}
}

func (r *Registry) pointChanged(id string, p geometry.Point) {
	rec, ok := r.points[id]
	if !ok {
		return
	}
	rec.Pos = p
	prev, _ := r.store.Get(store.KindPoint, id)
	if err := r.store.Save(store.KindPoint, id, store.PointEntry(p, prev)); err != nil {
		logSaveError(store.KindPoint, id, err)
	}
}

// GetRect returns the live geometry if the overlay is instantiated, else the
// stored geometry, else ErrNotFound.
func (r *Registry) GetRect(id string) (geometry.Rect, error) {
	if rec, ok := r.rects[id]; ok {
		return rec.Bounds, nil
	}
	if e, ok := r.store.Get(store.KindRect, id); ok {
		return e.Rect(), nil
	}
	return geometry.Rect{}, fmt.Errorf("%w: rect %q", ErrNotFound, id)
}

// GetPoint returns the live position if the marker is instantiated, else the
// stored position, else ErrNotFound.
func (r *Registry) GetPoint(id string) (geometry.Point, error) {
	if rec, ok := r.points[id]; ok {
		return rec.Pos, nil
	}
	if e, ok := r.store.Get(store.KindPoint, id); ok {
		return e.Point(), nil
	}
	return geometry.Point{}, fmt.Errorf("%w: point %q", ErrNotFound, id)
}

// ShowAll makes every live overlay visible. Idempotent.
func (r *Registry) ShowAll() {
	for _, rec := range r.rects {
		rec.handle.Show()
		rec.Visible = true
	}
	for _, rec := range r.points {
		rec.handle.Show()
		rec.Visible = true
	}
}

// HideAll hides every live overlay without destroying records or touching
// geometry. Idempotent.
func (r *Registry) HideAll() {
	for _, rec := range r.rects {
		rec.handle.Hide()
		rec.Visible = false
	}
	for _, rec := range r.points {
		rec.handle.Hide()
		rec.Visible = false
	}
}

// DestroyAll releases every widget and clears the live set. Persisted
// entries are untouched; geometry survives for the next process.
func (r *Registry) DestroyAll() {
	for _, rec := range r.rects {
		rec.handle.Destroy()
	}
	for _, rec := range r.points {
		rec.handle.Destroy()
	}
	r.rects = map[string]*RectRecord{}
	r.points = map[string]*PointRecord{}
}

// LiveCount returns the number of instantiated overlays across both kinds.
func (r *Registry) LiveCount() int {
	return len(r.rects) + len(r.points)
}

func displayLabel(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
