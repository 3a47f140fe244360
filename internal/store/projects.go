package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProject creates a named project.
func (s *Store) CreateProject(name string) (*Project, error) {
	p := Project{
		ID:   "p-" + uuid.New().String()[:8],
		Name: name,
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, formatTime(now), formatTime(now))
	if err != nil {
		return nil, wrapConstraint("insert project", err)
	}
	return &p, nil
}

// GetProject returns the project or nil when absent.
func (s *Store) GetProject(id string) (*Project, error) {
	var p Project
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

// ListProjects returns all projects ordered by creation time.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, updated_at FROM projects ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []Project
	for rows.Next() {
		var p Project
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		projects = append(projects, p)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return projects, nil
}

// DeleteProject removes a project and cascades through every contained
// board (context entries, edges, nodes, board rows) in one transaction.
// Deleting the default project fails loudly with ErrProtected.
func (s *Store) DeleteProject(id string) error {
	if id == DefaultProjectID {
		return fmt.Errorf("delete project %s: %w", id, ErrProtected)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.Query("SELECT id FROM boards WHERE project_id = ?", id)
	if err != nil {
		return fmt.Errorf("query project boards: %w", err)
	}
	var boardIDs []string
	for rows.Next() {
		var bid string
		if err := rows.Scan(&bid); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan board id: %w", err)
		}
		boardIDs = append(boardIDs, bid)
	}
	if err := checkRowsErr(rows); err != nil {
		return err
	}
	_ = rows.Close()

	for _, bid := range boardIDs {
		if err := deleteBoardTx(tx, bid); err != nil {
			return err
		}
	}

	result, err := tx.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete project %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
