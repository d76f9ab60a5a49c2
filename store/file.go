package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	configFileName = "overlays.json"

	// Pre-1.0 layout kept geometry in two separate files.
	legacyRectsFile  = "rects.json"
	legacyPointsFile = "points.json"
)

// DefaultDir returns the per-user config directory, ~/.desktop_overlay_manager.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".desktop_overlay_manager"), nil
}

// FileStore keeps all entries in one JSON file under the config directory.
// Every Save rewrites the file atomically (temp file + rename) before
// returning, so a crash immediately after Save cannot lose that entry.
type FileStore struct {
	dir  string
	path string
	snap Snapshot
}

// NewFileStore opens (creating if needed) the store under dir and loads it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create config dir: %w", err)
	}
	s := &FileStore{dir: dir, path: filepath.Join(dir, configFileName)}
	if _, err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string { return s.path }

// fileLayout is the on-disk shape written by flush: kind sections keyed by
// id, entries pre-encoded so a broken Extra payload drops one entry, not the
// file.
type fileLayout struct {
	Rects  map[string]json.RawMessage `json:"rects"`
	Points map[string]json.RawMessage `json:"points"`
}

// Load reads the backing file. An absent file is an empty store, not an
// error. An unreadable or wholly-malformed file is logged and treated the
// same way, so one corrupt file never blocks startup; malformed entries
// inside a healthy file are dropped and logged individually.
func (s *FileStore) Load() (Snapshot, error) {
	snap := Snapshot{KindRect: {}, KindPoint: {}}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.migrateLegacy(snap)
		s.snap = snap
		return snap, nil
	case err != nil:
		log.Printf("store: read %s: %v; starting empty", s.path, err)
		s.snap = snap
		return snap, nil
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		log.Printf("store: decode %s: %v; starting empty", s.path, err)
		s.snap = snap
		return snap, nil
	}
	decodeRawSection(snap, KindRect, sections["rects"])
	decodeRawSection(snap, KindPoint, sections["points"])

	s.snap = snap
	return snap, nil
}

// decodeRawSection decodes one kind section. A section that is missing or
// not an object degrades to empty; the other section still loads.
func decodeRawSection(snap Snapshot, kind Kind, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("store: ignoring malformed %s section: %v", kind, err)
		return
	}
	decodeSection(snap, kind, entries)
}

func decodeSection(snap Snapshot, kind Kind, raw map[string]json.RawMessage) {
	for id, payload := range raw {
		var e Entry
		if err := json.Unmarshal(payload, &e); err != nil {
			log.Printf("%v", &CorruptEntryError{Kind: kind, ID: id, Err: err})
			continue
		}
		if kind == KindRect && (e.Width <= 0 || e.Height <= 0) {
			log.Printf("%v", &CorruptEntryError{
				Kind: kind, ID: id,
				Err: fmt.Errorf("non-positive size %dx%d", e.Width, e.Height),
			})
			continue
		}
		snap[kind][id] = e
	}
}

// migrateLegacy folds pre-1.0 rects.json/points.json into the snapshot and
// writes the merged file.
func (s *FileStore) migrateLegacy(snap Snapshot) {
	rects := s.readLegacy(legacyRectsFile, KindRect)
	points := s.readLegacy(legacyPointsFile, KindPoint)
	if len(rects) == 0 && len(points) == 0 {
		return
	}
	for id, e := range rects {
		snap[KindRect][id] = e
	}
	for id, e := range points {
		snap[KindPoint][id] = e
	}
	s.snap = snap
	if err := s.flush(); err != nil {
		log.Printf("store: legacy migration write failed: %v", err)
	} else {
		log.Printf("store: migrated %d rects and %d points from legacy files", len(rects), len(points))
	}
}

func (s *FileStore) readLegacy(name string, kind Kind) map[string]Entry {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("store: skipping malformed legacy file %s: %v", name, err)
		return nil
	}
	out := make(map[string]Entry, len(raw))
	tmp := Snapshot{kind: out}
	decodeSection(tmp, kind, raw)
	return out
}

// Save upserts one entry and flushes synchronously. Only the given id's
// record changes; all others are rewritten as loaded.
func (s *FileStore) Save(kind Kind, id string, e Entry) error {
	if s.snap == nil {
		if _, err := s.Load(); err != nil {
			return err
		}
	}
	if s.snap[kind] == nil {
		s.snap[kind] = map[string]Entry{}
	}
	s.snap[kind][id] = e
	return s.flush()
}

// Get returns the cached entry for (kind, id).
func (s *FileStore) Get(kind Kind, id string) (Entry, bool) {
	return s.snap.Get(kind, id)
}

// Reset drops every entry and removes the backing file.
func (s *FileStore) Reset() error {
	s.snap = Snapshot{KindRect: {}, KindPoint: {}}
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close is a no-op for the file backend; it exists so both backends share
// one interface.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) flush() error {
	layout := fileLayout{
		Rects:  encodeSection(s.snap[KindRect]),
		Points: encodeSection(s.snap[KindPoint]),
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}

func encodeSection(entries map[string]Entry) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(entries))
	for id, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			// Entry marshalling only fails on broken Extra payloads.
			log.Printf("store: dropping unencodable entry %q: %v", id, err)
			continue
		}
		out[id] = payload
	}
	return out
}
