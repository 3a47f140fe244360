package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/techfulness/getsticky/internal/llm"
	"github.com/techfulness/getsticky/internal/semantic"
	"github.com/techfulness/getsticky/internal/store"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) record(e Event) {
	r.events = append(r.events, e)
}

func newTestManager(t *testing.T) (*Manager, *eventRecorder) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	// No provider credential, so the index is inert; its behavior with a
	// live embedder is covered in the semantic package.
	idx, err := semantic.NewIndex(st.DB(), llm.Config{})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	mgr := New(st, idx, nil)
	t.Cleanup(func() { _ = mgr.Close() })

	rec := &eventRecorder{}
	mgr.Subscribe(rec.record)
	return mgr, rec
}

func TestCreateNodeEmitsOneEvent(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	n, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeConversation, Context: "alpha"})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(rec.events))
	}
	e := rec.events[0]
	if e.Event != EventNodeCreated {
		t.Fatalf("event name mismatch: %q", e.Event)
	}
	if e.BoardID != n.BoardID {
		t.Fatalf("board scope mismatch: %q vs %q", e.BoardID, n.BoardID)
	}
	payload, ok := e.Data.(*store.Node)
	if !ok {
		t.Fatalf("payload should be the node, got %T", e.Data)
	}
	if payload.ID != n.ID {
		t.Fatalf("payload id mismatch: %q vs %q", payload.ID, n.ID)
	}
}

func TestCreateNodeFailureEmitsNothing(t *testing.T) {
	mgr, rec := newTestManager(t)

	if _, err := mgr.CreateNode(context.Background(), store.NodeSpec{Type: "bogus"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(rec.events) != 0 {
		t.Fatalf("failed mutation must not emit, got %d events", len(rec.events))
	}
}

func TestUpdateMissingNodeEmitsNothing(t *testing.T) {
	mgr, rec := newTestManager(t)

	ctxText := "x"
	n, err := mgr.UpdateNode(context.Background(), "n-missing", store.NodeUpdate{Context: &ctxText})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if n != nil {
		t.Fatalf("expected nil node, got %+v", n)
	}
	if len(rec.events) != 0 {
		t.Fatalf("no-op update must not emit, got %d events", len(rec.events))
	}
}

func TestDeleteNodeEvent(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	n, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeStickyNote})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.events = nil

	deleted, err := mgr.DeleteNode(n.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	e := rec.events[0]
	if e.Event != EventNodeDeleted {
		t.Fatalf("event name mismatch: %q", e.Event)
	}
	if e.BoardID != n.BoardID {
		t.Fatalf("deleted event should carry the pre-delete board, got %q", e.BoardID)
	}
	payload, ok := e.Data.(Deleted)
	if !ok || payload.ID != n.ID {
		t.Fatalf("payload mismatch: %+v", e.Data)
	}

	// Deleting again is a clean no-op with no event.
	rec.events = nil
	deleted, err = mgr.DeleteNode(n.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted || len(rec.events) != 0 {
		t.Fatalf("second delete should do nothing: deleted=%v events=%d", deleted, len(rec.events))
	}
}

func TestAddContextFlow(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	n, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeConversation})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.events = nil

	entry, err := mgr.AddContext(ctx, n.ID, "first observation", "")
	if err != nil {
		t.Fatalf("add context: %v", err)
	}
	if entry.Source != store.SourceUser {
		t.Fatalf("source should default to user, got %q", entry.Source)
	}

	got, err := mgr.GetNode(n.ID)
	if err != nil {
		t.Fatalf("get node: %v", err)
	}
	if got.Context != "first observation" {
		t.Fatalf("node context should roll up the entry, got %q", got.Context)
	}

	if len(rec.events) != 1 || rec.events[0].Event != EventContextAdded {
		t.Fatalf("expected one context_added event, got %+v", rec.events)
	}

	// Missing node: nil entry, no event.
	rec.events = nil
	missing, err := mgr.AddContext(ctx, "n-missing", "text", "")
	if err != nil {
		t.Fatalf("add to missing node: %v", err)
	}
	if missing != nil || len(rec.events) != 0 {
		t.Fatalf("missing node should be a silent nil: %+v events=%d", missing, len(rec.events))
	}
}

func TestAddContextProviderFailureLeavesNoPartialWrites(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	// Enabled index pointed at a dead endpoint: the embedding call is the
	// one step that can fail on an external provider, and it must fail
	// before either structured write happens.
	idx, err := semantic.NewIndex(st.DB(), llm.Config{
		Provider: llm.ProviderOllama,
		BaseURL:  "http://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	mgr := New(st, idx, nil)
	t.Cleanup(func() { _ = mgr.Close() })
	rec := &eventRecorder{}
	mgr.Subscribe(rec.record)

	n, err := st.CreateNode(store.NodeSpec{Type: store.NodeConversation})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	if _, err := mgr.AddContext(context.Background(), n.ID, "unreachable", ""); err == nil {
		t.Fatal("expected provider failure")
	}

	entries, err := mgr.GetContextEntries(n.ID)
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed add must not leave audit entries, got %d", len(entries))
	}
	got, err := mgr.GetNode(n.ID)
	if err != nil {
		t.Fatalf("get node: %v", err)
	}
	if got.Context != "" {
		t.Fatalf("failed add must not touch rolled-up context, got %q", got.Context)
	}
	if len(rec.events) != 0 {
		t.Fatalf("failed add must not emit, got %d events", len(rec.events))
	}
}

func TestEmptyUpdateEmitsNothing(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	n, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeRichText, Context: "kept"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.events = nil

	got, err := mgr.UpdateNode(ctx, n.ID, store.NodeUpdate{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if got == nil || got.Context != "kept" {
		t.Fatalf("empty update should return the current row, got %+v", got)
	}
	if len(rec.events) != 0 {
		t.Fatalf("empty update changes nothing and must not emit, got %d events", len(rec.events))
	}
}

func TestBranchInheritanceEndToEnd(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	a, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeConversation, Context: "alpha"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}

	b, err := mgr.BranchNode(ctx, a.ID, store.NodeSpec{})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	if b == nil {
		t.Fatal("branch returned nil")
	}

	if _, err := mgr.AddContext(ctx, b.ID, "beta", ""); err != nil {
		t.Fatalf("add context: %v", err)
	}

	inherited, err := mgr.GetInheritedContext(b.ID)
	if err != nil {
		t.Fatalf("inherited: %v", err)
	}
	if inherited != "alpha\n\nbeta" {
		t.Fatalf("inherited context mismatch: %q", inherited)
	}

	// Deleting the parent detaches the child but keeps its seeded context.
	if _, err := mgr.DeleteNode(a.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	got, err := mgr.GetNode(b.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got == nil {
		t.Fatal("child should survive parent deletion")
	}
	if got.ParentID != nil {
		t.Fatalf("child should be detached, parent %q", *got.ParentID)
	}
	inherited, err = mgr.GetInheritedContext(b.ID)
	if err != nil {
		t.Fatalf("inherited after delete: %v", err)
	}
	if inherited != "alpha\n\nbeta" {
		t.Fatalf("inherited context lost after parent delete: %q", inherited)
	}

	// One event per mutation: create a, create b, context_added, node_deleted.
	if len(rec.events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(rec.events), rec.events)
	}
}

func TestEdgeEventsScopedToSourceBoard(t *testing.T) {
	mgr, rec := newTestManager(t)
	ctx := context.Background()

	board, err := mgr.CreateBoard("Side", "", "")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	src, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeDiagramBox, BoardID: board.ID})
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	dst, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeDiagramBox})
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}
	rec.events = nil

	edge, err := mgr.CreateEdge(src.ID, dst.ID, "flows")
	if err != nil {
		t.Fatalf("create edge: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventEdgeCreated {
		t.Fatalf("expected edge_created, got %+v", rec.events)
	}
	if rec.events[0].BoardID != board.ID {
		t.Fatalf("edge event should carry the source board, got %q", rec.events[0].BoardID)
	}

	rec.events = nil
	deleted, err := mgr.DeleteEdge(edge.ID)
	if err != nil {
		t.Fatalf("delete edge: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventEdgeDeleted {
		t.Fatalf("expected edge_deleted, got %+v", rec.events)
	}
}

func TestUpdateViewportEvent(t *testing.T) {
	mgr, rec := newTestManager(t)

	b, err := mgr.CreateBoard("Camera", "", "")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	rec.events = nil

	got, err := mgr.UpdateViewport(b.ID, store.Viewport{X: 10, Y: -5, Zoom: 0.75})
	if err != nil {
		t.Fatalf("update viewport: %v", err)
	}
	if got.Viewport == nil || got.Viewport.Zoom != 0.75 {
		t.Fatalf("viewport not persisted: %+v", got.Viewport)
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventBoardUpdated {
		t.Fatalf("expected board_updated, got %+v", rec.events)
	}

	rec.events = nil
	missing, err := mgr.UpdateViewport("b-missing", store.Viewport{})
	if err != nil {
		t.Fatalf("update missing board: %v", err)
	}
	if missing != nil || len(rec.events) != 0 {
		t.Fatalf("missing board should be a silent nil: %+v events=%d", missing, len(rec.events))
	}
}

func TestDeleteDefaultBoardNoEvent(t *testing.T) {
	mgr, rec := newTestManager(t)

	err := mgr.DeleteBoard(store.DefaultBoardID)
	if !errors.Is(err, store.ErrProtected) {
		t.Fatalf("expected ErrProtected, got %v", err)
	}
	if len(rec.events) != 0 {
		t.Fatalf("failed delete must not emit, got %d events", len(rec.events))
	}
}

func TestProjectLifecycleEvents(t *testing.T) {
	mgr, rec := newTestManager(t)

	p, err := mgr.CreateProject("Research")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventProjectCreated {
		t.Fatalf("expected project_created, got %+v", rec.events)
	}

	rec.events = nil
	if err := mgr.DeleteProject(p.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventProjectDeleted {
		t.Fatalf("expected project_deleted, got %+v", rec.events)
	}
}
