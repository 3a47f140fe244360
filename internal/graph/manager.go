// Package graph is the unifying façade over the structured store and the
// semantic index. It is the only component allowed to mutate both in the
// same logical operation, which is what keeps them from drifting, and the
// sole emitter of mutation events.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/techfulness/getsticky/internal/notify"
	"github.com/techfulness/getsticky/internal/semantic"
	"github.com/techfulness/getsticky/internal/store"
)

// Manager composes the structured store and the semantic index into atomic
// higher-level operations. Callers never write to the semantic index
// directly for node-scoped text.
type Manager struct {
	store    *store.Store
	index    *semantic.Index
	notifier notify.Notifier
	subs     []Subscriber
}

// New creates a manager. A nil notifier disables out-of-process delivery.
func New(st *store.Store, idx *semantic.Index, n notify.Notifier) *Manager {
	if n == nil {
		n = notify.Nop{}
	}
	return &Manager{store: st, index: idx, notifier: n}
}

// Subscribe registers an in-process observer invoked synchronously after
// every successful mutation.
func (m *Manager) Subscribe(fn Subscriber) {
	m.subs = append(m.subs, fn)
}

// Close releases the notifier; the store and index handles are owned by the
// caller that constructed them.
func (m *Manager) Close() error {
	return m.notifier.Close()
}

// emit fires exactly once per completed mutation, after the underlying
// writes are durable. Notifier failures never reach the caller.
func (m *Manager) emit(event string, data any, boardID string) {
	e := Event{Event: event, Data: data, BoardID: boardID}
	for _, fn := range m.subs {
		fn(e)
	}
	m.notifier.Publish(event, data, boardID)
}

// CreateNode writes the node and, when it carries context, indexes that
// context as user-authored. Emits node_created.
func (m *Manager) CreateNode(ctx context.Context, spec store.NodeSpec) (*store.Node, error) {
	n, err := m.store.CreateNode(spec)
	if err != nil {
		return nil, err
	}

	if n.Context != "" {
		if err := m.index.AddContext(ctx, n.ID, n.BoardID, n.Context, store.SourceUser); err != nil {
			return nil, fmt.Errorf("index node context: %w", err)
		}
	}

	m.emit(EventNodeCreated, n, n.BoardID)
	return n, nil
}

// GetNode returns the node or nil.
func (m *Manager) GetNode(id string) (*store.Node, error) {
	return m.store.GetNode(id)
}

// ListNodes lists nodes with optional type/board filters.
func (m *Manager) ListNodes(nodeType, boardID string) ([]store.Node, error) {
	return m.store.ListNodes(nodeType, boardID)
}

// UpdateNode applies partial updates. A context change fully replaces the
// node's semantic-index entries: the index holds a flattened current-context
// snapshot per node, not a history. Emits node_updated only when the row
// existed and the update carried at least one field; returns nil for a
// missing id without emitting.
func (m *Manager) UpdateNode(ctx context.Context, id string, u store.NodeUpdate) (*store.Node, error) {
	if u.Empty() {
		return m.store.GetNode(id)
	}

	n, err := m.store.UpdateNode(id, u)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}

	if u.Context != nil {
		if err := m.index.DeleteNodeContexts(id); err != nil {
			return nil, fmt.Errorf("clear node index: %w", err)
		}
		if *u.Context != "" {
			if err := m.index.AddContext(ctx, n.ID, n.BoardID, *u.Context, store.SourceUser); err != nil {
				return nil, fmt.Errorf("index node context: %w", err)
			}
		}
	}

	m.emit(EventNodeUpdated, n, n.BoardID)
	return n, nil
}

// DeleteNode removes a node. The board scope is captured before the delete
// because the notification payload needs it. Index cleanup failures are
// tolerated here: the vectors are a rebuildable cache and the structured
// delete is what matters.
func (m *Manager) DeleteNode(id string) (bool, error) {
	n, err := m.store.GetNode(id)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}

	if err := m.index.DeleteNodeContexts(id); err != nil {
		slog.Debug("semantic cleanup failed on node delete", "node", id, "error", err)
	}

	removed, err := m.store.DeleteNode(id)
	if err != nil {
		return false, err
	}
	if removed {
		m.emit(EventNodeDeleted, Deleted{ID: id}, n.BoardID)
	}
	return removed, nil
}

// AddContext appends text to a node's audit trail, indexes it, and appends
// it to the node's rolled-up context field. Emits context_added. Returns
// nil when the node does not exist.
//
// The embedding call runs before either structured write: it is the only
// step that can fail on an external provider, and failing it afterwards
// would leave an audit entry with no matching rolled-up context.
func (m *Manager) AddContext(ctx context.Context, nodeID, text, source string) (*store.ContextEntry, error) {
	n, err := m.store.GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if source == "" {
		source = store.SourceUser
	}

	if err := m.index.AddContext(ctx, nodeID, n.BoardID, text, source); err != nil {
		return nil, fmt.Errorf("index context: %w", err)
	}

	entry, err := m.store.AddContextEntry(nodeID, text, source)
	if err != nil {
		return nil, err
	}

	if _, err := m.store.AppendNodeContext(nodeID, text); err != nil {
		return nil, err
	}

	m.emit(EventContextAdded, entry, n.BoardID)
	return entry, nil
}

// GetInheritedContext resolves the full ancestor context chain, root first.
func (m *Manager) GetInheritedContext(nodeID string) (string, error) {
	return m.store.GetInheritedContext(nodeID)
}

// GetContextEntries returns the node's audit trail.
func (m *Manager) GetContextEntries(nodeID string) ([]store.ContextEntry, error) {
	return m.store.GetContextEntries(nodeID)
}

// GetConversationPath returns the ancestor chain for a node, root first.
func (m *Manager) GetConversationPath(nodeID string) ([]store.Node, error) {
	return m.store.GetConversationPath(nodeID)
}

// BranchNode creates a child seeded with the parent's inherited context.
// The seeded context is indexed as agent-sourced, distinguishing inherited
// context from directly-authored context. Emits node_created for the child;
// returns nil when the parent is absent.
func (m *Manager) BranchNode(ctx context.Context, parentID string, spec store.NodeSpec) (*store.Node, error) {
	child, err := m.store.BranchNode(parentID, spec)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, nil
	}

	if child.Context != "" {
		if err := m.index.AddContext(ctx, child.ID, child.BoardID, child.Context, store.SourceAgent); err != nil {
			return nil, fmt.Errorf("index inherited context: %w", err)
		}
	}

	m.emit(EventNodeCreated, child, child.BoardID)
	return child, nil
}

// SearchContext runs a semantic search, optionally scoped to one board or
// one node. Returns empty when the index is disabled.
func (m *Manager) SearchContext(ctx context.Context, query string, limit int, boardID, nodeID string) ([]semantic.Result, error) {
	if nodeID != "" {
		return m.index.SearchInNode(ctx, nodeID, query, limit)
	}
	return m.index.Search(ctx, query, limit, boardID)
}

// CreateEdge connects two nodes. The event's board scope is derived from
// the source node. Emits edge_created.
func (m *Manager) CreateEdge(sourceID, targetID, label string) (*store.Edge, error) {
	e, err := m.store.CreateEdge(sourceID, targetID, label)
	if err != nil {
		return nil, err
	}

	boardID := m.boardForNode(sourceID)
	m.emit(EventEdgeCreated, e, boardID)
	return e, nil
}

// DeleteEdge removes an edge, reporting whether a row was removed. Emits
// edge_deleted.
func (m *Manager) DeleteEdge(id string) (bool, error) {
	e, err := m.store.GetEdge(id)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}
	boardID := m.boardForNode(e.SourceID)

	removed, err := m.store.DeleteEdge(id)
	if err != nil {
		return false, err
	}
	if removed {
		m.emit(EventEdgeDeleted, Deleted{ID: id}, boardID)
	}
	return removed, nil
}

func (m *Manager) boardForNode(nodeID string) string {
	n, err := m.store.GetNode(nodeID)
	if err != nil || n == nil {
		return store.DefaultBoardID
	}
	return n.BoardID
}

// CreateBoard creates a board. Emits board_created scoped to the new board.
func (m *Manager) CreateBoard(name, slug, projectID string) (*store.Board, error) {
	b, err := m.store.CreateBoard(name, slug, projectID)
	if err != nil {
		return nil, err
	}
	m.emit(EventBoardCreated, b, b.ID)
	return b, nil
}

// ListBoards lists boards with an optional project filter.
func (m *Manager) ListBoards(projectID string) ([]store.Board, error) {
	return m.store.ListBoards(projectID)
}

// UpdateViewport persists a board's camera. Emits board_updated; returns
// nil for a missing board without emitting.
func (m *Manager) UpdateViewport(id string, v store.Viewport) (*store.Board, error) {
	b, err := m.store.UpdateViewport(id, v)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	m.emit(EventBoardUpdated, b, b.ID)
	return b, nil
}

// DeleteBoard cascades a board away and purges its vectors. Emits
// board_deleted. Deleting the default board fails with store.ErrProtected
// and nothing is deleted or emitted.
func (m *Manager) DeleteBoard(id string) error {
	if err := m.store.DeleteBoard(id); err != nil {
		return err
	}
	if err := m.index.DeleteBoardContexts(id); err != nil {
		slog.Debug("semantic cleanup failed on board delete", "board", id, "error", err)
	}
	m.emit(EventBoardDeleted, Deleted{ID: id}, id)
	return nil
}

// CreateProject creates a project. Emits project_created with no board
// scope.
func (m *Manager) CreateProject(name string) (*store.Project, error) {
	p, err := m.store.CreateProject(name)
	if err != nil {
		return nil, err
	}
	m.emit(EventProjectCreated, p, "")
	return p, nil
}

// ListProjects lists all projects.
func (m *Manager) ListProjects() ([]store.Project, error) {
	return m.store.ListProjects()
}

// DeleteProject cascades a project and all its boards away, purging each
// board's vectors. Emits project_deleted.
func (m *Manager) DeleteProject(id string) error {
	boards, err := m.store.ListBoards(id)
	if err != nil {
		return err
	}

	if err := m.store.DeleteProject(id); err != nil {
		return err
	}

	for _, b := range boards {
		if err := m.index.DeleteBoardContexts(b.ID); err != nil {
			slog.Debug("semantic cleanup failed on project delete", "board", b.ID, "error", err)
		}
	}

	m.emit(EventProjectDeleted, Deleted{ID: id}, "")
	return nil
}

// ExportGraph snapshots one board's nodes and edges.
func (m *Manager) ExportGraph(boardID string) (*store.GraphExport, error) {
	return m.store.ExportGraph(boardID)
}

// GetStats returns aggregate counts.
func (m *Manager) GetStats() (*store.Stats, error) {
	return m.store.GetStats()
}
