package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
)

// RegisterTools registers every canvas tool on the server. All handlers go
// through the graph manager so mutations stay consistent across the
// structured store and the semantic index.
func RegisterTools(server *mcpsdk.Server, mgr *graph.Manager) error {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-node",
		Description: "Create a canvas node. Args: type [conversation|diagram|diagramBox|container|terminal|richtext|stickyNote|list] (required), content (opaque JSON), context, parentId, boardId.",
	}, createNodeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-node",
		Description: "Get one node by id with full content, context, and parent linkage.",
	}, getNodeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "update-node",
		Description: "Partially update a node: content, context (full replace), type, parentId (empty string detaches).",
	}, updateNodeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-node",
		Description: "Delete a node. Children are detached, edges and context entries are removed.",
	}, deleteNodeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list-nodes",
		Description: "List nodes, newest first. Args: type, boardId filters.",
	}, listNodesHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "branch-conversation",
		Description: "Create a child node seeded with the parent's inherited context. Args: parentId (required), type, content, context (appended after inherited).",
	}, branchHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-edge",
		Description: "Connect two nodes with a directed, optionally labeled edge. Args: sourceId, targetId (required), label.",
	}, createEdgeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-edge",
		Description: "Delete an edge by id.",
	}, deleteEdgeHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add-context",
		Description: "Append free-text context to a node. Args: nodeId, text (required), source [user|agent|codebase|diagram]. Indexed for semantic search.",
	}, addContextHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-context",
		Description: "Get a node's own context, the inherited ancestor chain, and the append-only entry trail.",
	}, getContextHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search-context",
		Description: "Semantic search over indexed context. Args: query (required), limit (default 5), boardId or nodeId scope. Empty when no embedding provider is configured.",
	}, searchContextHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-conversation-path",
		Description: "Get the ancestor chain for a node, root first.",
	}, conversationPathHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "export-graph",
		Description: "Export one board's nodes and edges as a snapshot. Args: boardId (defaults to the default board).",
	}, exportGraphHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get-stats",
		Description: "Aggregate counts: nodes (total and by type), edges, boards, projects, context entries.",
	}, statsHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "create-board",
		Description: "Create a board. Args: name (required), slug (derived from name if empty), projectId.",
	}, createBoardHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete-board",
		Description: "Delete a board and everything on it. The default board cannot be deleted.",
	}, deleteBoardHandler(mgr))

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list-boards",
		Description: "List boards. Args: projectId filter.",
	}, listBoardsHandler(mgr))

	return nil
}
