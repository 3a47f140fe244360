// Package store provides sqlite-backed persistence for the canvas context
// graph: projects, boards, nodes, edges, context entries, and settings.
//
// The store owns referential integrity (cascading deletes, parent nulling)
// and schema migration. It does not interpret node content payloads and it
// never touches the semantic index; the graph manager composes the two.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors for the failure taxonomy callers branch on.
var (
	// ErrNotFound marks operations against a missing row where absence is
	// an error rather than a nil result.
	ErrNotFound = errors.New("not found")
	// ErrProtected marks attempts to delete the default project or board.
	ErrProtected = errors.New("default entity cannot be deleted")
	// ErrConstraint marks storage-level integrity violations (duplicate id,
	// dangling reference).
	ErrConstraint = errors.New("constraint violation")
)

// Store is the structured half of the dual-storage model. The underlying
// sqlite engine serializes writes, so callers interleave operations without
// an extra locking layer.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database under basePath, runs migrations, and
// seeds the default project and board. Use ":memory:" for tests.
func Open(basePath string) (*Store, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, "getsticky.db")
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// ":memory:" databases are per-connection, so the pool must stay at one
	// for every query to see the same database. A single connection also
	// matches sqlite's one-writer locking model for file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedDefaults(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle so the semantic index can share the same
// database file.
func (s *Store) DB() *sql.DB {
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS boards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	project_id TEXT NOT NULL,
	viewport_x REAL,
	viewport_y REAL,
	viewport_zoom REAL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	UNIQUE (project_id, slug)
);

CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',     -- opaque payload, never interpreted
	context TEXT NOT NULL DEFAULT '',     -- rolled-up free text for inheritance
	parent_id TEXT,
	board_id TEXT NOT NULL DEFAULT 'default',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE SET NULL,
	FOREIGN KEY (board_id) REFERENCES boards(id)
);

CREATE TABLE IF NOT EXISTS edges (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	label TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
	FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS context_entries (
	id TEXT PRIMARY KEY,
	node_id TEXT NOT NULL,
	text TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT 'user',
	created_at TEXT NOT NULL,
	FOREIGN KEY (node_id) REFERENCES nodes(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_board ON nodes(board_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
CREATE INDEX IF NOT EXISTS idx_context_entries_node ON context_entries(node_id);
CREATE INDEX IF NOT EXISTS idx_boards_project ON boards(project_id);
`

// Migrate creates missing tables and applies additive column migrations.
// Structural checks go through introspection, not a version counter, so
// repeated runs against an already-migrated database are no-ops.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Additive columns for databases created before the column existed.
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"boards", "slug", "ALTER TABLE boards ADD COLUMN slug TEXT NOT NULL DEFAULT ''"},
		{"boards", "viewport_x", "ALTER TABLE boards ADD COLUMN viewport_x REAL"},
		{"boards", "viewport_y", "ALTER TABLE boards ADD COLUMN viewport_y REAL"},
		{"boards", "viewport_zoom", "ALTER TABLE boards ADD COLUMN viewport_zoom REAL"},
		{"nodes", "context", "ALTER TABLE nodes ADD COLUMN context TEXT NOT NULL DEFAULT ''"},
	}

	for _, m := range migrations {
		exists, err := s.columnExists(m.table, m.column)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", m.table, m.column, err)
		}
		if exists {
			continue
		}
		if _, err := s.db.Exec(m.ddl); err != nil {
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("migration %s.%s: %w", m.table, m.column, err)
			}
		}
	}

	if err := s.backfillBoardSlugs(); err != nil {
		return fmt.Errorf("backfill board slugs: %w", err)
	}

	return nil
}

// columnExists checks PRAGMA table_info for the named column.
func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// backfillBoardSlugs assigns deterministic slugs to boards migrated from
// schemas that lacked them: derived from the board id, de-duplicated within
// the project with a numeric suffix.
func (s *Store) backfillBoardSlugs() error {
	rows, err := s.db.Query("SELECT id, project_id FROM boards WHERE slug = '' ORDER BY created_at, id")
	if err != nil {
		return fmt.Errorf("query slugless boards: %w", err)
	}
	type ref struct{ id, projectID string }
	var missing []ref
	for rows.Next() {
		var r ref
		if err := rows.Scan(&r.id, &r.projectID); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan board: %w", err)
		}
		missing = append(missing, r)
	}
	if err := checkRowsErr(rows); err != nil {
		return err
	}
	_ = rows.Close()

	for _, r := range missing {
		base := Slugify(r.id)
		slug := base
		for n := 2; ; n++ {
			var count int
			err := s.db.QueryRow(
				"SELECT COUNT(*) FROM boards WHERE project_id = ? AND slug = ?",
				r.projectID, slug,
			).Scan(&count)
			if err != nil {
				return fmt.Errorf("check slug %q: %w", slug, err)
			}
			if count == 0 {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		if _, err := s.db.Exec("UPDATE boards SET slug = ? WHERE id = ?", slug, r.id); err != nil {
			return fmt.Errorf("assign slug %q: %w", slug, err)
		}
	}

	return nil
}

// seedDefaults creates the default project and board when missing.
func (s *Store) seedDefaults() error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, created_at, updated_at)
		VALUES (?, 'Default Project', ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, DefaultProjectID, now, now)
	if err != nil {
		return fmt.Errorf("seed default project: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO boards (id, name, slug, project_id, created_at, updated_at)
		VALUES (?, 'Default Board', 'default', ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, DefaultBoardID, DefaultProjectID, now, now)
	if err != nil {
		return fmt.Errorf("seed default board: %w", err)
	}

	return nil
}

// Slugify reduces s to a lowercase, hyphen-separated identifier.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true // trim leading hyphens
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		out = "board"
	}
	return out
}

// wrapConstraint converts sqlite integrity errors into ErrConstraint so
// callers can classify them without matching driver strings.
func wrapConstraint(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "constraint") || strings.Contains(msg, "FOREIGN KEY") || strings.Contains(msg, "UNIQUE") {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
