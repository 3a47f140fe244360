package store

import "fmt"

// GetStats returns aggregate counts across the whole graph.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{NodesByType: make(map[string]int)}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM nodes", &stats.Nodes},
		{"SELECT COUNT(*) FROM edges", &stats.Edges},
		{"SELECT COUNT(*) FROM boards", &stats.Boards},
		{"SELECT COUNT(*) FROM projects", &stats.Projects},
		{"SELECT COUNT(*) FROM context_entries", &stats.ContextEntries},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	rows, err := s.db.Query("SELECT type, COUNT(*) FROM nodes GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("count nodes by type: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		stats.NodesByType[t] = n
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}

	return stats, nil
}

// ExportGraph snapshots one board's nodes and edges.
func (s *Store) ExportGraph(boardID string) (*GraphExport, error) {
	if boardID == "" {
		boardID = DefaultBoardID
	}

	nodes, err := s.ListNodes("", boardID)
	if err != nil {
		return nil, err
	}
	edges, err := s.ListEdges(boardID)
	if err != nil {
		return nil, err
	}

	return &GraphExport{BoardID: boardID, Nodes: nodes, Edges: edges}, nil
}
