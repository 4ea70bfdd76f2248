package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/mankinskin/hypergraph/internal/vertex"
)

// SnapshotStore persists a vertex arena to a SQLite file via the
// pure-Go modernc.org/sqlite driver, in WAL mode with a single
// connection.
type SnapshotStore struct {
	db *sql.DB
}

// OpenSnapshotStore opens (creating if necessary) a SQLite-backed
// snapshot file at path. An empty path opens an in-memory store,
// useful for tests that want the schema and statements exercised
// without touching disk.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	dsn := ":memory:"
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create snapshot directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	s := &SnapshotStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS vertices (
		id    INTEGER PRIMARY KEY,
		width INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS pattern_entries (
		vertex_id   INTEGER NOT NULL,
		pattern_id  INTEGER NOT NULL,
		entry       INTEGER NOT NULL,
		child_id    INTEGER NOT NULL,
		child_width INTEGER NOT NULL,
		PRIMARY KEY (vertex_id, pattern_id, entry)
	);
	CREATE TABLE IF NOT EXISTS atom_values (
		vertex_id  INTEGER PRIMARY KEY,
		value_json TEXT NOT NULL
	);
	`)
	return err
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// Save persists the full vertex arena and the atom value side table in
// one transaction, overwriting any snapshot already on disk.
func (s *SnapshotStore) Save(vertices []vertex.VertexSnapshot, atomValues map[vertex.ID]json.RawMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM pattern_entries", "DELETE FROM atom_values", "DELETE FROM vertices"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear snapshot: %w", err)
		}
	}

	vertexStmt, err := tx.Prepare(`INSERT INTO vertices(id, width) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vertex insert: %w", err)
	}
	defer vertexStmt.Close()

	entryStmt, err := tx.Prepare(`INSERT INTO pattern_entries(vertex_id, pattern_id, entry, child_id, child_width) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare pattern entry insert: %w", err)
	}
	defer entryStmt.Close()

	for _, v := range vertices {
		if _, err := vertexStmt.Exec(uint64(v.ID), v.Width); err != nil {
			return fmt.Errorf("insert vertex %d: %w", v.ID, err)
		}
		for pid, pattern := range v.Patterns {
			for i, child := range pattern {
				if _, err := entryStmt.Exec(uint64(v.ID), uint32(pid), i, uint64(child.ID), child.Width); err != nil {
					return fmt.Errorf("insert pattern entry: %w", err)
				}
			}
		}
	}

	atomStmt, err := tx.Prepare(`INSERT INTO atom_values(vertex_id, value_json) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare atom value insert: %w", err)
	}
	defer atomStmt.Close()
	for id, raw := range atomValues {
		if _, err := atomStmt.Exec(uint64(id), string(raw)); err != nil {
			return fmt.Errorf("insert atom value %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// Load reconstructs the vertex snapshots and raw atom values previously
// written by Save.
func (s *SnapshotStore) Load() ([]vertex.VertexSnapshot, map[vertex.ID]json.RawMessage, error) {
	rows, err := s.db.Query(`SELECT id, width FROM vertices`)
	if err != nil {
		return nil, nil, fmt.Errorf("query vertices: %w", err)
	}
	byID := make(map[vertex.ID]*vertex.VertexSnapshot)
	var order []vertex.ID
	for rows.Next() {
		var id uint64
		var width uint32
		if err := rows.Scan(&id, &width); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan vertex: %w", err)
		}
		vid := vertex.ID(id)
		byID[vid] = &vertex.VertexSnapshot{ID: vid, Width: width, Patterns: make(map[vertex.PatternID]vertex.Pattern)}
		order = append(order, vid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	entryRows, err := s.db.Query(`SELECT vertex_id, pattern_id, entry, child_id, child_width FROM pattern_entries ORDER BY vertex_id, pattern_id, entry`)
	if err != nil {
		return nil, nil, fmt.Errorf("query pattern entries: %w", err)
	}
	for entryRows.Next() {
		var vid, patID uint64
		var entry int
		var childID uint64
		var childWidth uint32
		if err := entryRows.Scan(&vid, &patID, &entry, &childID, &childWidth); err != nil {
			entryRows.Close()
			return nil, nil, fmt.Errorf("scan pattern entry: %w", err)
		}
		snap, ok := byID[vertex.ID(vid)]
		if !ok {
			entryRows.Close()
			return nil, nil, fmt.Errorf("pattern entry references unknown vertex %d", vid)
		}
		pattern := snap.Patterns[vertex.PatternID(patID)]
		for len(pattern) <= entry {
			pattern = append(pattern, vertex.Token{})
		}
		pattern[entry] = vertex.Token{ID: vertex.ID(childID), Width: childWidth}
		snap.Patterns[vertex.PatternID(patID)] = pattern
	}
	entryRows.Close()
	if err := entryRows.Err(); err != nil {
		return nil, nil, err
	}

	atomRows, err := s.db.Query(`SELECT vertex_id, value_json FROM atom_values`)
	if err != nil {
		return nil, nil, fmt.Errorf("query atom values: %w", err)
	}
	atomValues := make(map[vertex.ID]json.RawMessage)
	for atomRows.Next() {
		var vid uint64
		var raw string
		if err := atomRows.Scan(&vid, &raw); err != nil {
			atomRows.Close()
			return nil, nil, fmt.Errorf("scan atom value: %w", err)
		}
		atomValues[vertex.ID(vid)] = json.RawMessage(raw)
	}
	atomRows.Close()
	if err := atomRows.Err(); err != nil {
		return nil, nil, err
	}

	out := make([]vertex.VertexSnapshot, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, atomValues, nil
}
