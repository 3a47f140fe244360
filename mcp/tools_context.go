package mcp

// Context tools: add, get, semantic search

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

// addContextHandler appends a context fragment to a node
func addContextHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.AddContextParams, types.ContextEntry] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.AddContextParams]) (*mcpsdk.CallToolResultFor[types.ContextEntry], error) {
		args := params.Arguments
		logToolCall("add-context", args)

		if strings.TrimSpace(args.NodeID) == "" {
			return nil, types.NewMCPError("MISSING_NODE_ID", "Node ID is required", map[string]interface{}{
				"field": "nodeId",
			})
		}
		if strings.TrimSpace(args.Text) == "" {
			return nil, types.NewMCPError("MISSING_TEXT", "Context text is required", map[string]interface{}{
				"field": "text",
			})
		}

		source := strings.TrimSpace(args.Source)
		if source != "" && !store.ValidSource(source) {
			return nil, types.NewMCPError("INVALID_SOURCE", fmt.Sprintf("Unknown context source %q", source), map[string]interface{}{
				"value":        source,
				"valid_values": []string{store.SourceUser, store.SourceAgent, store.SourceCodebase, store.SourceDiagram},
			})
		}

		entry, err := mgr.AddContext(ctx, args.NodeID, args.Text, source)
		if err != nil {
			return nil, wrapStoreError(err, "add-context", args.NodeID)
		}
		if entry == nil {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.NodeID), map[string]interface{}{
				"node_id": args.NodeID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.ContextEntry]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Added context %s to node %s", entry.ID, args.NodeID),
				},
			},
			StructuredContent: entryToResponse(entry),
		}, nil
	}
}

// getContextHandler returns a node's own context, its inherited chain, and
// the append-only entry trail
func getContextHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.GetContextParams, types.ContextResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.GetContextParams]) (*mcpsdk.CallToolResultFor[types.ContextResponse], error) {
		args := params.Arguments

		if strings.TrimSpace(args.NodeID) == "" {
			return nil, types.NewMCPError("MISSING_NODE_ID", "Node ID is required", map[string]interface{}{
				"field": "nodeId",
			})
		}

		node, err := mgr.GetNode(args.NodeID)
		if err != nil {
			return nil, wrapStoreError(err, "get-context", args.NodeID)
		}
		if node == nil {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.NodeID), map[string]interface{}{
				"node_id": args.NodeID,
			})
		}

		inherited, err := mgr.GetInheritedContext(args.NodeID)
		if err != nil {
			return nil, wrapStoreError(err, "get-context", args.NodeID)
		}

		entries, err := mgr.GetContextEntries(args.NodeID)
		if err != nil {
			return nil, wrapStoreError(err, "get-context", args.NodeID)
		}

		resp := types.ContextResponse{
			NodeID:    node.ID,
			Context:   node.Context,
			Inherited: inherited,
		}
		for i := range entries {
			resp.Entries = append(resp.Entries, entryToResponse(&entries[i]))
		}

		return &mcpsdk.CallToolResultFor[types.ContextResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Context for node %s (%d entries)", node.ID, len(entries)),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}

// searchContextHandler runs a semantic search over indexed context
func searchContextHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.SearchContextParams, types.SearchResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.SearchContextParams]) (*mcpsdk.CallToolResultFor[types.SearchResponse], error) {
		args := params.Arguments
		logToolCall("search-context", args)

		if strings.TrimSpace(args.Query) == "" {
			return nil, types.NewMCPError("MISSING_QUERY", "Search query is required", map[string]interface{}{
				"field": "query",
			})
		}

		results, err := mgr.SearchContext(ctx, args.Query, args.Limit, args.BoardID, args.NodeID)
		if err != nil {
			return nil, types.NewMCPError("SEARCH_FAILED", err.Error(), map[string]interface{}{
				"query": args.Query,
			})
		}

		resp := types.SearchResponse{
			Results: resultsToResponses(results),
			Count:   len(results),
		}

		return &mcpsdk.CallToolResultFor[types.SearchResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Found %d matching context fragments", resp.Count),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}
