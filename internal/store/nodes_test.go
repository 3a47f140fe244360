package store

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreateNode(t *testing.T, s *Store, spec NodeSpec) *Node {
	t.Helper()
	n, err := s.CreateNode(spec)
	if err != nil {
		t.Fatalf("create node: %v", err)
	}
	return n
}

func TestCreateNodeDefaults(t *testing.T) {
	s := newTestStore(t)

	n := mustCreateNode(t, s, NodeSpec{Type: NodeStickyNote})
	if n.ID == "" {
		t.Fatal("node id empty")
	}
	if n.BoardID != DefaultBoardID {
		t.Fatalf("expected default board, got %q", n.BoardID)
	}

	got, err := s.GetNode(n.ID)
	if err != nil {
		t.Fatalf("get node: %v", err)
	}
	if got == nil || got.ID != n.ID {
		t.Fatalf("node not persisted: %+v", got)
	}
}

func TestCreateNodeRejectsUnknownType(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateNode(NodeSpec{Type: "whiteboard"}); err == nil {
		t.Fatal("expected validation error for unknown type")
	}
	if _, err := s.CreateNode(NodeSpec{}); err == nil {
		t.Fatal("expected validation error for missing type")
	}
}

func TestCreateNodeDanglingRefsFail(t *testing.T) {
	s := newTestStore(t)

	missing := "n-missing"
	if _, err := s.CreateNode(NodeSpec{Type: NodeConversation, ParentID: &missing}); !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint for dangling parent, got %v", err)
	}
	if _, err := s.CreateNode(NodeSpec{Type: NodeConversation, BoardID: "b-missing"}); !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint for dangling board, got %v", err)
	}
}

func TestUpdateNodePartial(t *testing.T) {
	s := newTestStore(t)
	n := mustCreateNode(t, s, NodeSpec{Type: NodeRichText, Content: []byte(`{"text":"hi"}`), Context: "notes"})

	got, err := s.UpdateNode(n.ID, NodeUpdate{Content: []byte(`{"text":"bye"}`)})
	if err != nil {
		t.Fatalf("update node: %v", err)
	}
	if string(got.Content) != `{"text":"bye"}` {
		t.Fatalf("content not updated: %s", got.Content)
	}
	if got.Context != "notes" {
		t.Fatalf("context should be untouched, got %q", got.Context)
	}
}

func TestUpdateNodeRejectsUnknownType(t *testing.T) {
	s := newTestStore(t)
	n := mustCreateNode(t, s, NodeSpec{Type: NodeStickyNote})

	bogus := "whiteboard"
	if _, err := s.UpdateNode(n.ID, NodeUpdate{Type: &bogus}); err == nil {
		t.Fatal("expected unknown type to be rejected")
	}

	got, err := s.GetNode(n.ID)
	if err != nil {
		t.Fatalf("get node: %v", err)
	}
	if got.Type != NodeStickyNote {
		t.Fatalf("type must be unchanged after rejected update, got %q", got.Type)
	}
}

func TestUpdateNodeMissing(t *testing.T) {
	s := newTestStore(t)

	ctx := "x"
	got, err := s.UpdateNode("n-missing", NodeUpdate{Context: &ctx})
	if err != nil {
		t.Fatalf("update missing node: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing node, got %+v", got)
	}
}

func TestUpdateNodeDetachParent(t *testing.T) {
	s := newTestStore(t)
	parent := mustCreateNode(t, s, NodeSpec{Type: NodeConversation})
	child := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &parent.ID})

	empty := ""
	got, err := s.UpdateNode(child.ID, NodeUpdate{ParentID: &empty})
	if err != nil {
		t.Fatalf("detach parent: %v", err)
	}
	if got.ParentID != nil {
		t.Fatalf("expected detached node, parent is %q", *got.ParentID)
	}
}

func TestDeleteNodeCascades(t *testing.T) {
	s := newTestStore(t)
	parent := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "alpha"})
	child := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &parent.ID})
	other := mustCreateNode(t, s, NodeSpec{Type: NodeStickyNote})

	edge, err := s.CreateEdge(parent.ID, other.ID, "relates")
	if err != nil {
		t.Fatalf("create edge: %v", err)
	}
	if _, err := s.AddContextEntry(parent.ID, "alpha", SourceUser); err != nil {
		t.Fatalf("add context entry: %v", err)
	}

	deleted, err := s.DeleteNode(parent.ID)
	if err != nil {
		t.Fatalf("delete node: %v", err)
	}
	if !deleted {
		t.Fatal("expected a row to be deleted")
	}

	// Child survives with a nulled parent.
	got, err := s.GetNode(child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got == nil {
		t.Fatal("child should survive parent deletion")
	}
	if got.ParentID != nil {
		t.Fatalf("child parent should be null, got %q", *got.ParentID)
	}

	// Edges and context entries referencing the node are gone.
	if e, err := s.GetEdge(edge.ID); err != nil || e != nil {
		t.Fatalf("edge should be cascaded away, got %+v err %v", e, err)
	}
	entries, err := s.GetContextEntries(parent.ID)
	if err != nil {
		t.Fatalf("get context entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("context entries should be cascaded away, got %d", len(entries))
	}
}

func TestDeleteNodeMissing(t *testing.T) {
	s := newTestStore(t)
	deleted, err := s.DeleteNode("n-missing")
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if deleted {
		t.Fatal("expected no row deleted")
	}
}

func TestListNodesFilters(t *testing.T) {
	s := newTestStore(t)
	board, err := s.CreateBoard("Scratch", "", "")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	mustCreateNode(t, s, NodeSpec{Type: NodeConversation})
	mustCreateNode(t, s, NodeSpec{Type: NodeStickyNote})
	mustCreateNode(t, s, NodeSpec{Type: NodeStickyNote, BoardID: board.ID})

	all, err := s.ListNodes("", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(all))
	}

	sticky, err := s.ListNodes(NodeStickyNote, "")
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(sticky) != 2 {
		t.Fatalf("expected 2 sticky notes, got %d", len(sticky))
	}

	scoped, err := s.ListNodes(NodeStickyNote, board.ID)
	if err != nil {
		t.Fatalf("list by type and board: %v", err)
	}
	if len(scoped) != 1 {
		t.Fatalf("expected 1 node on board, got %d", len(scoped))
	}
}

func TestInheritedContextRootFirst(t *testing.T) {
	s := newTestStore(t)
	root := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "alpha"})
	a := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "beta", ParentID: &root.ID})
	b := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &a.ID})
	c := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "gamma", ParentID: &b.ID})

	got, err := s.GetInheritedContext(c.ID)
	if err != nil {
		t.Fatalf("inherited context: %v", err)
	}
	want := "alpha\n\nbeta\n\ngamma"
	if got != want {
		t.Fatalf("inherited context mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestInheritedContextDedupesRepeatedText(t *testing.T) {
	s := newTestStore(t)
	root := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "shared note"})
	mid := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "shared note\n\nmid extra", ParentID: &root.ID})
	leaf := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &mid.ID})

	got, err := s.GetInheritedContext(leaf.ID)
	if err != nil {
		t.Fatalf("inherited context: %v", err)
	}
	// Dedupe keys on fragment text alone, so identical text on two ancestors
	// (whether branch-seeded or authored independently) appears once, at its
	// rootmost position.
	want := "shared note\n\nmid extra"
	if got != want {
		t.Fatalf("inherited context mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestInheritedContextCycleTerminates(t *testing.T) {
	s := newTestStore(t)
	x := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "x-ctx"})
	y := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "y-ctx", ParentID: &x.ID})

	// Close the loop: x's parent becomes y.
	if _, err := s.UpdateNode(x.ID, NodeUpdate{ParentID: &y.ID}); err != nil {
		t.Fatalf("create cycle: %v", err)
	}

	got, err := s.GetInheritedContext(y.ID)
	if err != nil {
		t.Fatalf("inherited context with cycle: %v", err)
	}
	want := "x-ctx\n\ny-ctx"
	if got != want {
		t.Fatalf("cycle walk mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestInheritedContextMissingNode(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetInheritedContext("n-missing")
	if err != nil {
		t.Fatalf("inherited context: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty context, got %q", got)
	}
}

func TestConversationPathRootFirst(t *testing.T) {
	s := newTestStore(t)
	root := mustCreateNode(t, s, NodeSpec{Type: NodeConversation})
	mid := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &root.ID})
	leaf := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, ParentID: &mid.ID})

	path, err := s.GetConversationPath(leaf.ID)
	if err != nil {
		t.Fatalf("conversation path: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(path))
	}
	if path[0].ID != root.ID || path[1].ID != mid.ID || path[2].ID != leaf.ID {
		t.Fatalf("path order wrong: %s %s %s", path[0].ID, path[1].ID, path[2].ID)
	}

	missing, err := s.GetConversationPath("n-missing")
	if err != nil {
		t.Fatalf("path for missing node: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil path, got %d nodes", len(missing))
	}
}

func TestBranchNodeSeedsInheritedContext(t *testing.T) {
	s := newTestStore(t)
	root := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "alpha"})

	child, err := s.BranchNode(root.ID, NodeSpec{Context: "fork notes"})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	if child == nil {
		t.Fatal("branch returned nil for existing parent")
	}
	if child.Type != NodeConversation {
		t.Fatalf("branch type should default to conversation, got %q", child.Type)
	}
	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Fatal("child should point at the parent")
	}
	if child.Context != "alpha\n\nfork notes" {
		t.Fatalf("seeded context mismatch: %q", child.Context)
	}
	if child.BoardID != root.BoardID {
		t.Fatalf("child should land on parent board, got %q", child.BoardID)
	}
}

func TestBranchSnapshotImmutable(t *testing.T) {
	s := newTestStore(t)
	root := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "alpha"})

	child, err := s.BranchNode(root.ID, NodeSpec{})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}

	// Editing the parent afterwards must not rewrite the child's seed.
	changed := "rewritten"
	if _, err := s.UpdateNode(root.ID, NodeUpdate{Context: &changed}); err != nil {
		t.Fatalf("update parent: %v", err)
	}

	got, err := s.GetNode(child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got.Context != "alpha" {
		t.Fatalf("child seed should be immutable, got %q", got.Context)
	}
}

func TestBranchMissingParent(t *testing.T) {
	s := newTestStore(t)
	child, err := s.BranchNode("n-missing", NodeSpec{})
	if err != nil {
		t.Fatalf("branch missing parent: %v", err)
	}
	if child != nil {
		t.Fatalf("expected nil child, got %+v", child)
	}
}

func TestAppendNodeContext(t *testing.T) {
	s := newTestStore(t)
	n := mustCreateNode(t, s, NodeSpec{Type: NodeConversation, Context: "alpha"})

	got, err := s.AppendNodeContext(n.ID, "beta")
	if err != nil {
		t.Fatalf("append context: %v", err)
	}
	if got.Context != "alpha\n\nbeta" {
		t.Fatalf("appended context mismatch: %q", got.Context)
	}

	missing, err := s.AppendNodeContext("n-missing", "x")
	if err != nil {
		t.Fatalf("append to missing node: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing node")
	}
}

func TestContextEntriesOrdered(t *testing.T) {
	s := newTestStore(t)
	n := mustCreateNode(t, s, NodeSpec{Type: NodeConversation})

	if _, err := s.AddContextEntry(n.ID, "first", ""); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := s.AddContextEntry(n.ID, "second", SourceAgent); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	entries, err := s.GetContextEntries(n.ID)
	if err != nil {
		t.Fatalf("get entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	bySrc := map[string]string{}
	for _, e := range entries {
		bySrc[e.Text] = e.Source
	}
	if bySrc["first"] != SourceUser {
		t.Fatalf("empty source should default to user, got %q", bySrc["first"])
	}
	if bySrc["second"] != SourceAgent {
		t.Fatalf("agent source not kept, got %q", bySrc["second"])
	}
}
