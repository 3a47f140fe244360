package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateBoard creates a board in the given project (default project when
// empty). The slug is derived from the name when not supplied; (project_id,
// slug) uniqueness is enforced by the storage layer.
func (s *Store) CreateBoard(name, slug, projectID string) (*Board, error) {
	if projectID == "" {
		projectID = DefaultProjectID
	}
	if slug == "" {
		slug = Slugify(name)
	}

	b := Board{
		ID:        "b-" + uuid.New().String()[:8],
		Name:      name,
		Slug:      slug,
		ProjectID: projectID,
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO boards (id, name, slug, project_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.Slug, b.ProjectID, formatTime(now), formatTime(now))
	if err != nil {
		return nil, wrapConstraint("insert board", err)
	}
	return &b, nil
}

// GetBoard returns the board or nil when absent.
func (s *Store) GetBoard(id string) (*Board, error) {
	var b Board
	var vx, vy, vz sql.NullFloat64
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, name, slug, project_id, viewport_x, viewport_y, viewport_zoom, created_at, updated_at
		FROM boards WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.Slug, &b.ProjectID, &vx, &vy, &vz, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query board: %w", err)
	}
	if vx.Valid && vy.Valid && vz.Valid {
		b.Viewport = &Viewport{X: vx.Float64, Y: vy.Float64, Zoom: vz.Float64}
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

// ListBoards returns boards, optionally filtered by project.
func (s *Store) ListBoards(projectID string) ([]Board, error) {
	query := `
		SELECT id, name, slug, project_id, viewport_x, viewport_y, viewport_zoom, created_at, updated_at
		FROM boards`
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var boards []Board
	for rows.Next() {
		var b Board
		var vx, vy, vz sql.NullFloat64
		var createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.ProjectID, &vx, &vy, &vz, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		if vx.Valid && vy.Valid && vz.Valid {
			b.Viewport = &Viewport{X: vx.Float64, Y: vy.Float64, Zoom: vz.Float64}
		}
		b.CreatedAt = parseTime(createdAt)
		b.UpdatedAt = parseTime(updatedAt)
		boards = append(boards, b)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return boards, nil
}

// UpdateViewport persists a board's camera position. Returns nil when the
// board does not exist.
func (s *Store) UpdateViewport(id string, v Viewport) (*Board, error) {
	result, err := s.db.Exec(`
		UPDATE boards SET viewport_x = ?, viewport_y = ?, viewport_zoom = ?, updated_at = ?
		WHERE id = ?
	`, v.X, v.Y, v.Zoom, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("update viewport: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update viewport rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}
	return s.GetBoard(id)
}

// DeleteBoard removes a board and everything on it (context entries, edges,
// nodes, then the board row) in one transaction. Deleting the default
// board is a programming error and fails loudly with ErrProtected.
func (s *Store) DeleteBoard(id string) error {
	if id == DefaultBoardID {
		return fmt.Errorf("delete board %s: %w", id, ErrProtected)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteBoardTx(tx, id); err != nil {
		return err
	}

	result, err := tx.Exec("DELETE FROM boards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete board rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete board %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// deleteBoardTx removes a board's contents inside an open transaction.
// Removing the nodes cascades to edges and context entries through the
// foreign keys; edges into other boards are covered by the endpoint
// cascade.
func deleteBoardTx(tx *sql.Tx, boardID string) error {
	if _, err := tx.Exec("DELETE FROM nodes WHERE board_id = ?", boardID); err != nil {
		return fmt.Errorf("delete board nodes: %w", err)
	}
	return nil
}
