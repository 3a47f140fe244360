package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextSeparator joins context fragments in a node's rolled-up context and
// in inherited-context assembly.
const ContextSeparator = "\n\n"

// CreateNode inserts a new node. Referential constraints (existing parent
// and board, unique id) are enforced by the storage layer and surface as
// ErrConstraint, not pre-checked here.
func (s *Store) CreateNode(spec NodeSpec) (*Node, error) {
	if err := ValidateStruct(spec); err != nil {
		return nil, fmt.Errorf("validate node spec: %w", err)
	}

	n := Node{
		ID:       spec.ID,
		Type:     spec.Type,
		Content:  spec.Content,
		Context:  spec.Context,
		ParentID: spec.ParentID,
		BoardID:  spec.BoardID,
	}
	if n.ID == "" {
		n.ID = "n-" + uuid.New().String()[:8]
	}
	if n.BoardID == "" {
		n.BoardID = DefaultBoardID
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	var parent any
	if n.ParentID != nil && *n.ParentID != "" {
		parent = *n.ParentID
	}

	_, err := s.db.Exec(`
		INSERT INTO nodes (id, type, content, context, parent_id, board_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Type, string(n.Content), n.Context, parent, n.BoardID,
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
	if err != nil {
		return nil, wrapConstraint("insert node", err)
	}

	return &n, nil
}

// GetNode returns the node or nil when the id does not exist.
func (s *Store) GetNode(id string) (*Node, error) {
	row := s.db.QueryRow(`
		SELECT id, type, content, context, parent_id, board_id, created_at, updated_at
		FROM nodes WHERE id = ?
	`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query node: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var n Node
	var content, createdAt, updatedAt string
	var parent sql.NullString
	err := row.Scan(&n.ID, &n.Type, &content, &n.Context, &parent, &n.BoardID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if content != "" {
		n.Content = []byte(content)
	}
	if parent.Valid {
		p := parent.String
		n.ParentID = &p
	}
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return &n, nil
}

// UpdateNode applies only the provided fields and refreshes updated_at.
// Returns nil when the id does not exist; an empty update returns the
// current row untouched. A type change must stay within the known node
// types, same as at create.
func (s *Store) UpdateNode(id string, u NodeUpdate) (*Node, error) {
	if u.Empty() {
		return s.GetNode(id)
	}
	if u.Type != nil && !ValidNodeType(*u.Type) {
		return nil, fmt.Errorf("validate node update: unknown node type %q", *u.Type)
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}

	if u.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, string(u.Content))
	}
	if u.Context != nil {
		sets = append(sets, "context = ?")
		args = append(args, *u.Context)
	}
	if u.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *u.Type)
	}
	if u.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		if *u.ParentID == "" {
			args = append(args, nil)
		} else {
			args = append(args, *u.ParentID)
		}
	}

	args = append(args, id)
	result, err := s.db.Exec("UPDATE nodes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, wrapConstraint("update node", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update node rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	return s.GetNode(id)
}

// DeleteNode removes one node. The storage-level cascade removes edges
// referencing it and nulls children's parent_id; children themselves are
// only removed by explicit container/board/project cascades. Reports
// whether a row was actually removed.
func (s *Store) DeleteNode(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete node: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete node rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListNodes returns nodes newest-first, optionally filtered by type and/or
// board.
func (s *Store) ListNodes(nodeType, boardID string) ([]Node, error) {
	query := `
		SELECT id, type, content, context, parent_id, board_id, created_at, updated_at
		FROM nodes`
	var conds []string
	var args []any
	if nodeType != "" {
		conds = append(conds, "type = ?")
		args = append(args, nodeType)
	}
	if boardID != "" {
		conds = append(conds, "board_id = ?")
		args = append(args, boardID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *n)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ancestorChain walks the parent chain from id to the root, returning ids
// and contexts child-first. A visited set guards against parent cycles: a
// revisited node ends the walk as if its parent were absent.
func (s *Store) ancestorChain(id string) ([]Node, error) {
	visited := make(map[string]bool)
	var chain []Node
	cur := id
	for cur != "" {
		if visited[cur] {
			break
		}
		visited[cur] = true

		n, err := s.GetNode(cur)
		if err != nil {
			return nil, err
		}
		if n == nil {
			break
		}
		chain = append(chain, *n)
		if n.ParentID == nil {
			break
		}
		cur = *n.ParentID
	}
	return chain, nil
}

// GetInheritedContext concatenates every ancestor's own context root-first,
// separated by blank lines, skipping empty contexts. Fragments already seen
// earlier in the chain are not repeated, so a branch-seeded copy of an
// ancestor's context does not double-count it. The dedupe keys on the
// fragment text alone: identical text authored independently on two
// different ancestors also appears once, at its first (rootmost) position.
func (s *Store) GetInheritedContext(nodeID string) (string, error) {
	chain, err := s.ancestorChain(nodeID)
	if err != nil {
		return "", fmt.Errorf("walk parent chain: %w", err)
	}

	seen := make(map[string]bool)
	var parts []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, frag := range strings.Split(chain[i].Context, ContextSeparator) {
			if frag == "" || seen[frag] {
				continue
			}
			seen[frag] = true
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, ContextSeparator), nil
}

// GetConversationPath returns the ancestor chain for a node, root first.
// Returns nil when the node does not exist.
func (s *Store) GetConversationPath(nodeID string) ([]Node, error) {
	chain, err := s.ancestorChain(nodeID)
	if err != nil {
		return nil, fmt.Errorf("walk parent chain: %w", err)
	}
	if len(chain) == 0 {
		return nil, nil
	}
	// child-first to root-first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// BranchNode creates a child of parentID seeded with the parent's full
// inherited context, flattened at branch time. Later parent edits do not
// retroactively change the child. Returns nil when the parent is absent.
func (s *Store) BranchNode(parentID string, spec NodeSpec) (*Node, error) {
	parent, err := s.GetNode(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, nil
	}

	inherited, err := s.GetInheritedContext(parentID)
	if err != nil {
		return nil, err
	}

	seeded := inherited
	if spec.Context != "" {
		if seeded == "" {
			seeded = spec.Context
		} else {
			seeded = seeded + ContextSeparator + spec.Context
		}
	}

	child := NodeSpec{
		ID:       spec.ID,
		Type:     spec.Type,
		Content:  spec.Content,
		Context:  seeded,
		ParentID: &parent.ID,
		BoardID:  parent.BoardID,
	}
	if child.Type == "" {
		child.Type = NodeConversation
	}

	return s.CreateNode(child)
}

// AppendNodeContext appends text to a node's rolled-up context field,
// joined with a blank line, and refreshes updated_at. Returns nil when the
// node does not exist.
func (s *Store) AppendNodeContext(nodeID, text string) (*Node, error) {
	n, err := s.GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}

	joined := text
	if n.Context != "" {
		joined = n.Context + ContextSeparator + text
	}
	return s.UpdateNode(nodeID, NodeUpdate{Context: &joined})
}

// AddContextEntry appends one immutable fragment to a node's context audit
// trail.
func (s *Store) AddContextEntry(nodeID, text, source string) (*ContextEntry, error) {
	if source == "" {
		source = SourceUser
	}
	e := ContextEntry{
		ID:        "c-" + uuid.New().String()[:8],
		NodeID:    nodeID,
		Text:      text,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO context_entries (id, node_id, text, source, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.NodeID, e.Text, e.Source, formatTime(e.CreatedAt))
	if err != nil {
		return nil, wrapConstraint("insert context entry", err)
	}
	return &e, nil
}

// GetContextEntries returns a node's audit trail ordered by creation time.
func (s *Store) GetContextEntries(nodeID string) ([]ContextEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, node_id, text, source, created_at
		FROM context_entries WHERE node_id = ? ORDER BY created_at, id
	`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("query context entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []ContextEntry
	for rows.Next() {
		var e ContextEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.NodeID, &e.Text, &e.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan context entry: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := checkRowsErr(rows); err != nil {
		return nil, err
	}
	return entries, nil
}
