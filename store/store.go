// Package store persists last-known overlay geometry per id so calibrations
// survive process restarts.
package store

import (
	"encoding/json"
	"fmt"

	"desktop-overlay-manager/geometry"
)

// Kind selects an id sub-namespace. A rect and a point may share the same
// literal id without collision.
type Kind string

const (
	KindRect  Kind = "rect"
	KindPoint Kind = "point"
)

// Entry is the durable counterpart of one overlay's geometry. Labels and
// style are deliberately not persisted. Unknown fields found on disk are
// kept in Extra and written back untouched, so newer writers and older data
// can coexist.
type Entry struct {
	X      int
	Y      int
	Width  int // zero for points
	Height int // zero for points
	Extra  map[string]json.RawMessage
}

// Rect converts the entry to rectangle geometry.
func (e Entry) Rect() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Point converts the entry to point geometry.
func (e Entry) Point() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// RectEntry builds an entry from rectangle geometry, preserving prior extras.
func RectEntry(r geometry.Rect, prev Entry) Entry {
	return Entry{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height, Extra: prev.Extra}
}

// PointEntry builds an entry from point geometry, preserving prior extras.
func PointEntry(p geometry.Point, prev Entry) Entry {
	return Entry{X: p.X, Y: p.Y, Extra: prev.Extra}
}

// Snapshot is everything the store knows, keyed by kind then id.
type Snapshot map[Kind]map[string]Entry

// Get looks up one entry in the snapshot.
func (s Snapshot) Get(kind Kind, id string) (Entry, bool) {
	e, ok := s[kind][id]
	return e, ok
}

// Store is durable geometry persistence. Save flushes synchronously before
// returning. Concurrent processes sharing one store are not coordinated;
// last writer wins.
type Store interface {
	Load() (Snapshot, error)
	Save(kind Kind, id string, e Entry) error
	Get(kind Kind, id string) (Entry, bool)
	Reset() error
	Close() error
}

// CorruptEntryError flags one malformed durable entry. Loading recovers by
// dropping the entry; it is never fatal for the whole store.
type CorruptEntryError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("store: corrupt %s entry %q: %v", e.Kind, e.ID, e.Err)
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }

// MarshalJSON emits known geometry fields merged with preserved extras.
// Width/height are omitted for point entries.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(e.Extra)+4)
	for k, v := range e.Extra {
		m[k] = v
	}
	m["x"] = rawInt(e.X)
	m["y"] = rawInt(e.Y)
	if e.Width != 0 || e.Height != 0 {
		m["width"] = rawInt(e.Width)
		m["height"] = rawInt(e.Height)
	}
	return json.Marshal(m)
}

// UnmarshalJSON pulls known fields and keeps everything else in Extra.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*e = Entry{}
	for _, f := range []struct {
		key string
		dst *int
	}{
		{"x", &e.X},
		{"y", &e.Y},
		{"width", &e.Width},
		{"height", &e.Height},
	} {
		raw, ok := m[f.key]
		if !ok {
			continue
		}
		// Tolerate floats written by other tools; 10.0 is still 10.
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %q: %w", f.key, err)
		}
		*f.dst = int(v)
		delete(m, f.key)
	}
	if len(m) > 0 {
		e.Extra = m
	}
	return nil
}

func rawInt(v int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", v))
}
