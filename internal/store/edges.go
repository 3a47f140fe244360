package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateEdge connects two existing nodes. Missing endpoints surface as
// ErrConstraint from the foreign keys.
func (s *Store) CreateEdge(sourceID, targetID, label string) (*Edge, error) {
	e := Edge{
		ID:        "e-" + uuid.New().String()[:8],
		SourceID:  sourceID,
		TargetID:  targetID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}

	var labelVal any
	if label != "" {
		labelVal = label
	}

	_, err := s.db.Exec(`
		INSERT INTO edges (id, source_id, target_id, label, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.SourceID, e.TargetID, labelVal, formatTime(e.CreatedAt))
	if err != nil {
		return nil, wrapConstraint("insert edge", err)
	}
	return &e, nil
}

// GetEdge returns the edge or nil when absent.
func (s *Store) GetEdge(id string) (*Edge, error) {
	var e Edge
	var label sql.NullString
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, source_id, target_id, label, created_at FROM edges WHERE id = ?
	`, id).Scan(&e.ID, &e.SourceID, &e.TargetID, &label, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query edge: %w", err)
	}
	e.Label = label.String
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// DeleteEdge removes one edge, reporting whether a row was removed.
func (s *Store) DeleteEdge(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM edges WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete edge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete edge rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListEdges returns edges whose source node sits on the given board, or all
// edges when boardID is empty.
func (s *Store) ListEdges(boardID string) ([]Edge, error) {
	query := `
		SELECT e.id, e.source_id, e.target_id, e.label, e.created_at
		FROM edges e`
	var args []any
	if boardID != "" {
		query += ` JOIN nodes n ON n.id = e.source_id WHERE n.board_id = ?`
		args = append(args, boardID)
	}
	query += " ORDER BY e.created_at, e.id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var edges []Edge
	for rows.Next() {
		var e Edge
		var label sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID, &label, &createdAt); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Label = label.String
		e.CreatedAt = parseTime(createdAt)
		edges = append(edges, e)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return edges, nil
}
