package mcp

import (
	"context"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/internal/llm"
	"github.com/techfulness/getsticky/internal/semantic"
	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

func newTestManager(t *testing.T) *graph.Manager {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	idx, err := semantic.NewIndex(st.DB(), llm.Config{})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	mgr := graph.New(st, idx, nil)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestCreateNodeHandler(t *testing.T) {
	mgr := newTestManager(t)
	handler := createNodeHandler(mgr)

	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.CreateNodeParams]{
		Arguments: types.CreateNodeParams{Type: "stickyNote", Context: "remember this"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.StructuredContent.ID == "" {
		t.Fatal("response should carry the generated id")
	}
	if res.StructuredContent.BoardID != store.DefaultBoardID {
		t.Fatalf("expected default board, got %q", res.StructuredContent.BoardID)
	}
}

func TestCreateNodeHandlerValidation(t *testing.T) {
	mgr := newTestManager(t)
	handler := createNodeHandler(mgr)

	_, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.CreateNodeParams]{
		Arguments: types.CreateNodeParams{},
	})
	if err == nil {
		t.Fatal("expected error for missing type")
	}
	mcpErr, ok := err.(*types.MCPError)
	if !ok {
		t.Fatalf("expected MCPError, got %T", err)
	}
	if mcpErr.Code != "MISSING_TYPE" {
		t.Fatalf("code mismatch: %q", mcpErr.Code)
	}

	_, err = handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.CreateNodeParams]{
		Arguments: types.CreateNodeParams{Type: "conversation", ParentID: "n-missing"},
	})
	if mcpErr, ok := err.(*types.MCPError); !ok || mcpErr.Code != "PARENT_NOT_FOUND" {
		t.Fatalf("expected PARENT_NOT_FOUND, got %v", err)
	}
}

func TestUpdateNodeHandlerRejectsUnknownType(t *testing.T) {
	mgr := newTestManager(t)
	created, err := mgr.CreateNode(context.Background(), store.NodeSpec{Type: store.NodeStickyNote})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	handler := updateNodeHandler(mgr)

	_, err = handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.UpdateNodeParams]{
		Arguments: types.UpdateNodeParams{ID: created.ID, Type: "whiteboard"},
	})
	if mcpErr, ok := err.(*types.MCPError); !ok || mcpErr.Code != "INVALID_TYPE" {
		t.Fatalf("expected INVALID_TYPE, got %v", err)
	}

	got, err := mgr.GetNode(created.ID)
	if err != nil {
		t.Fatalf("get node: %v", err)
	}
	if got.Type != store.NodeStickyNote {
		t.Fatalf("rejected update must not persist, type is %q", got.Type)
	}
}

func TestGetNodeHandlerNotFound(t *testing.T) {
	mgr := newTestManager(t)
	handler := getNodeHandler(mgr)

	_, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.GetNodeParams]{
		Arguments: types.GetNodeParams{ID: "n-missing"},
	})
	if mcpErr, ok := err.(*types.MCPError); !ok || mcpErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestBranchHandlerSeedsContext(t *testing.T) {
	mgr := newTestManager(t)

	parent, err := mgr.CreateNode(context.Background(), store.NodeSpec{Type: store.NodeConversation, Context: "alpha"})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	handler := branchHandler(mgr)
	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.BranchParams]{
		Arguments: types.BranchParams{ParentID: parent.ID},
	})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	if res.StructuredContent.Context != "alpha" {
		t.Fatalf("seeded context mismatch: %q", res.StructuredContent.Context)
	}
	if res.StructuredContent.ParentID != parent.ID {
		t.Fatalf("parent linkage mismatch: %q", res.StructuredContent.ParentID)
	}
}

func TestAddContextHandlerRejectsUnknownSource(t *testing.T) {
	mgr := newTestManager(t)

	n, err := mgr.CreateNode(context.Background(), store.NodeSpec{Type: store.NodeConversation})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}

	handler := addContextHandler(mgr)
	_, err = handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.AddContextParams]{
		Arguments: types.AddContextParams{NodeID: n.ID, Text: "hi", Source: "robot"},
	})
	if mcpErr, ok := err.(*types.MCPError); !ok || mcpErr.Code != "INVALID_SOURCE" {
		t.Fatalf("expected INVALID_SOURCE, got %v", err)
	}
}

func TestGetContextHandlerAssemblesViews(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)

	root, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeConversation, Context: "alpha"})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := mgr.BranchNode(ctx, root.ID, store.NodeSpec{})
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	if _, err := mgr.AddContext(ctx, child.ID, "beta", ""); err != nil {
		t.Fatalf("add context: %v", err)
	}

	handler := getContextHandler(mgr)
	res, err := handler(ctx, nil, &mcpsdk.CallToolParamsFor[types.GetContextParams]{
		Arguments: types.GetContextParams{NodeID: child.ID},
	})
	if err != nil {
		t.Fatalf("get context: %v", err)
	}
	if res.StructuredContent.Inherited != "alpha\n\nbeta" {
		t.Fatalf("inherited mismatch: %q", res.StructuredContent.Inherited)
	}
	if len(res.StructuredContent.Entries) != 1 || res.StructuredContent.Entries[0].Text != "beta" {
		t.Fatalf("entries mismatch: %+v", res.StructuredContent.Entries)
	}
}

func TestSearchContextHandlerDisabledIndex(t *testing.T) {
	mgr := newTestManager(t)
	handler := searchContextHandler(mgr)

	res, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.SearchContextParams]{
		Arguments: types.SearchContextParams{Query: "anything"},
	})
	if err != nil {
		t.Fatalf("search with disabled index should succeed: %v", err)
	}
	if res.StructuredContent.Count != 0 {
		t.Fatalf("expected empty results, got %d", res.StructuredContent.Count)
	}
}

func TestDeleteBoardHandlerProtectsDefault(t *testing.T) {
	mgr := newTestManager(t)
	handler := deleteBoardHandler(mgr)

	_, err := handler(context.Background(), nil, &mcpsdk.CallToolParamsFor[types.DeleteBoardParams]{
		Arguments: types.DeleteBoardParams{ID: store.DefaultBoardID},
	})
	if mcpErr, ok := err.(*types.MCPError); !ok || mcpErr.Code != "PROTECTED" {
		t.Fatalf("expected PROTECTED, got %v", err)
	}
}

func TestStatsHandlerCounts(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t)

	a, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeConversation})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := mgr.CreateNode(ctx, store.NodeSpec{Type: store.NodeStickyNote})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := mgr.CreateEdge(a.ID, b.ID, ""); err != nil {
		t.Fatalf("create edge: %v", err)
	}

	handler := statsHandler(mgr)
	res, err := handler(ctx, nil, &mcpsdk.CallToolParamsFor[types.StatsParams]{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	got := res.StructuredContent
	if got.Nodes != 2 || got.Edges != 1 || got.Boards != 1 || got.Projects != 1 {
		t.Fatalf("counts mismatch: %+v", got)
	}
	if got.NodesByType["conversation"] != 1 || got.NodesByType["stickyNote"] != 1 {
		t.Fatalf("type counts mismatch: %+v", got.NodesByType)
	}
}
