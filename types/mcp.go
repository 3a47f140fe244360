package types

import "encoding/json"

// MCP tool parameter and response types for the canvas graph tools.
// Param structs double as the JSON schema source for the MCP SDK.

// CreateNodeParams for creating a canvas node
type CreateNodeParams struct {
	Type     string          `json:"type" mcp:"Node type: conversation, diagram, diagramBox, container, terminal, richtext, stickyNote, list (required)"`
	Content  json.RawMessage `json:"content,omitempty" mcp:"Opaque node content payload; shape is owned by the node type"`
	Context  string          `json:"context,omitempty" mcp:"Initial free-text context for the node"`
	ParentID string          `json:"parentId,omitempty" mcp:"Parent node ID"`
	BoardID  string          `json:"boardId,omitempty" mcp:"Board ID (defaults to the default board)"`
}

// GetNodeParams for retrieving one node
type GetNodeParams struct {
	ID string `json:"id" mcp:"Node ID to retrieve (required)"`
}

// UpdateNodeParams for partial node updates
type UpdateNodeParams struct {
	ID       string          `json:"id" mcp:"Node ID to update (required)"`
	Content  json.RawMessage `json:"content,omitempty" mcp:"New content payload"`
	Context  *string         `json:"context,omitempty" mcp:"New rolled-up context (full replace)"`
	Type     string          `json:"type,omitempty" mcp:"New node type"`
	ParentID *string         `json:"parentId,omitempty" mcp:"New parent node ID; empty string detaches"`
}

// DeleteNodeParams for deleting one node
type DeleteNodeParams struct {
	ID string `json:"id" mcp:"Node ID to delete (required)"`
}

// ListNodesParams filters the node listing
type ListNodesParams struct {
	Type    string `json:"type,omitempty" mcp:"Filter by node type"`
	BoardID string `json:"boardId,omitempty" mcp:"Filter by board ID"`
}

// BranchParams for branching a conversation from a parent node
type BranchParams struct {
	ParentID string          `json:"parentId" mcp:"Node to branch from (required)"`
	Type     string          `json:"type,omitempty" mcp:"Type for the new child (defaults to conversation)"`
	Content  json.RawMessage `json:"content,omitempty" mcp:"Content payload for the new child"`
	Context  string          `json:"context,omitempty" mcp:"Extra context appended after the inherited chain"`
}

// CreateEdgeParams for connecting two nodes
type CreateEdgeParams struct {
	SourceID string `json:"sourceId" mcp:"Source node ID (required)"`
	TargetID string `json:"targetId" mcp:"Target node ID (required)"`
	Label    string `json:"label,omitempty" mcp:"Optional edge label"`
}

// DeleteEdgeParams for removing an edge
type DeleteEdgeParams struct {
	ID string `json:"id" mcp:"Edge ID to delete (required)"`
}

// AddContextParams appends context to a node
type AddContextParams struct {
	NodeID string `json:"nodeId" mcp:"Node ID to attach context to (required)"`
	Text   string `json:"text" mcp:"Context text (required)"`
	Source string `json:"source,omitempty" mcp:"Context source: user, agent, codebase, diagram (defaults to user)"`
}

// GetContextParams fetches a node's inherited context chain
type GetContextParams struct {
	NodeID string `json:"nodeId" mcp:"Node ID (required)"`
}

// SearchContextParams runs a semantic search over indexed context
type SearchContextParams struct {
	Query   string `json:"query" mcp:"Search query (required)"`
	Limit   int    `json:"limit,omitempty" mcp:"Max results (default 5)"`
	BoardID string `json:"boardId,omitempty" mcp:"Restrict to one board"`
	NodeID  string `json:"nodeId,omitempty" mcp:"Restrict to one node"`
}

// ConversationPathParams fetches the ancestor chain for a node
type ConversationPathParams struct {
	NodeID string `json:"nodeId" mcp:"Node ID (required)"`
}

// ExportGraphParams exports a board's nodes and edges
type ExportGraphParams struct {
	BoardID string `json:"boardId,omitempty" mcp:"Board to export (defaults to the default board)"`
}

// StatsParams has no arguments; kept for handler symmetry
type StatsParams struct{}

// CreateBoardParams for creating a board
type CreateBoardParams struct {
	Name      string `json:"name" mcp:"Board name (required)"`
	Slug      string `json:"slug,omitempty" mcp:"URL slug, unique within the project (derived from name if empty)"`
	ProjectID string `json:"projectId,omitempty" mcp:"Owning project (defaults to the default project)"`
}

// DeleteBoardParams for deleting a board
type DeleteBoardParams struct {
	ID string `json:"id" mcp:"Board ID to delete (required)"`
}

// ListBoardsParams filters the board listing
type ListBoardsParams struct {
	ProjectID string `json:"projectId,omitempty" mcp:"Filter by project ID"`
}

// NodeResponse is the structured payload for node operations
type NodeResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content,omitempty"`
	Context   string          `json:"context,omitempty"`
	ParentID  string          `json:"parentId,omitempty"`
	BoardID   string          `json:"boardId"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// NodeListResponse wraps a node listing
type NodeListResponse struct {
	Nodes []NodeResponse `json:"nodes"`
	Count int            `json:"count"`
}

// EdgeResponse is the structured payload for edge operations
type EdgeResponse struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Label    string `json:"label,omitempty"`
}

// DeleteResponse reports a deletion outcome
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// ContextResponse carries a node's context views
type ContextResponse struct {
	NodeID    string         `json:"nodeId"`
	Context   string         `json:"context,omitempty"`
	Inherited string         `json:"inherited,omitempty"`
	Entries   []ContextEntry `json:"entries,omitempty"`
}

// ContextEntry is one audit-trail fragment
type ContextEntry struct {
	ID        string `json:"id"`
	NodeID    string `json:"nodeId"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
}

// SearchResult is one semantic search hit
type SearchResult struct {
	NodeID  string  `json:"nodeId"`
	BoardID string  `json:"boardId"`
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
}

// SearchResponse wraps semantic search hits
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// PathResponse is the ancestor chain for a node, root first
type PathResponse struct {
	NodeID string         `json:"nodeId"`
	Path   []NodeResponse `json:"path"`
}

// GraphExportResponse is a board snapshot of nodes and edges
type GraphExportResponse struct {
	BoardID string         `json:"boardId"`
	Nodes   []NodeResponse `json:"nodes"`
	Edges   []EdgeResponse `json:"edges"`
}

// StatsResponse reports aggregate graph counts
type StatsResponse struct {
	Nodes          int            `json:"nodes"`
	NodesByType    map[string]int `json:"nodesByType"`
	Edges          int            `json:"edges"`
	Boards         int            `json:"boards"`
	Projects       int            `json:"projects"`
	ContextEntries int            `json:"contextEntries"`
}

// BoardResponse is the structured payload for board operations
type BoardResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ProjectID string `json:"projectId"`
}

// BoardListResponse wraps a board listing
type BoardListResponse struct {
	Boards []BoardResponse `json:"boards"`
	Count  int             `json:"count"`
}
