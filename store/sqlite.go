package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteFileName = "overlays.db"
	schemaVersion  = 1
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS overlays (
	kind    TEXT NOT NULL,
	id      TEXT NOT NULL,
	x       INTEGER NOT NULL,
	y       INTEGER NOT NULL,
	width   INTEGER NOT NULL DEFAULT 0,
	height  INTEGER NOT NULL DEFAULT 0,
	extra   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (kind, id)
);
`

// SQLiteStore is the opt-in database backend. It holds the same data as
// FileStore but keyed rows replace whole-file rewrites, which suits stores
// with many overlays.
type SQLiteStore struct {
	db   *sql.DB
	snap Snapshot
}

// NewSQLiteStore opens (or creates) the database under dir and loads it.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create config dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFileName))
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if _, err := s.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaV1); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	var ver int
	err := db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&ver)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("store: init schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("store: read schema version: %w", err)
	case ver != schemaVersion:
		return fmt.Errorf("store: unsupported schema version %d (want %d)", ver, schemaVersion)
	}
	return nil
}

// Load reads every row. A row whose extra payload fails to decode keeps its
// geometry and drops the extras; geometry-invalid rect rows are skipped.
func (s *SQLiteStore) Load() (Snapshot, error) {
	snap := Snapshot{KindRect: {}, KindPoint: {}}

	rows, err := s.db.Query(`SELECT kind, id, x, y, width, height, extra FROM overlays`)
	if err != nil {
		return nil, fmt.Errorf("store: query overlays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, id, extra string
			e               Entry
		)
		if err := rows.Scan(&kind, &id, &e.X, &e.Y, &e.Width, &e.Height, &extra); err != nil {
			return nil, fmt.Errorf("store: scan overlay row: %w", err)
		}
		k := Kind(kind)
		if k != KindRect && k != KindPoint {
			log.Printf("%v", &CorruptEntryError{Kind: k, ID: id, Err: fmt.Errorf("unknown kind")})
			continue
		}
		if k == KindRect && (e.Width <= 0 || e.Height <= 0) {
			log.Printf("%v", &CorruptEntryError{
				Kind: k, ID: id,
				Err: fmt.Errorf("non-positive size %dx%d", e.Width, e.Height),
			})
			continue
		}
		if extra != "" {
			if err := json.Unmarshal([]byte(extra), &e.Extra); err != nil {
				log.Printf("store: dropping unreadable extras for %s %q: %v", k, id, err)
				e.Extra = nil
			}
		}
		snap[k][id] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate overlays: %w", err)
	}

	s.snap = snap
	return snap, nil
}

// Save upserts one row synchronously.
func (s *SQLiteStore) Save(kind Kind, id string, e Entry) error {
	extra := ""
	if len(e.Extra) > 0 {
		data, err := json.Marshal(e.Extra)
		if err != nil {
			return fmt.Errorf("store: encode extras: %w", err)
		}
		extra = string(data)
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO overlays (kind, id, x, y, width, height, extra) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(kind), id, e.X, e.Y, e.Width, e.Height, extra,
	)
	if err != nil {
		return fmt.Errorf("store: upsert %s %q: %w", kind, id, err)
	}
	if s.snap == nil {
		s.snap = Snapshot{KindRect: {}, KindPoint: {}}
	}
	if s.snap[kind] == nil {
		s.snap[kind] = map[string]Entry{}
	}
	s.snap[kind][id] = e
	return nil
}

// Get returns the cached entry for (kind, id).
func (s *SQLiteStore) Get(kind Kind, id string) (Entry, bool) {
	return s.snap.Get(kind, id)
}

// Reset drops every row.
func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM overlays`); err != nil {
		return fmt.Errorf("store: reset: %w", err)
	}
	s.snap = Snapshot{KindRect: {}, KindPoint: {}}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
