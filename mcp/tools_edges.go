package mcp

// Edge tools: create, delete

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/types"
)

// createEdgeHandler connects two nodes
func createEdgeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.CreateEdgeParams, types.EdgeResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CreateEdgeParams]) (*mcpsdk.CallToolResultFor[types.EdgeResponse], error) {
		args := params.Arguments
		logToolCall("create-edge", args)

		if strings.TrimSpace(args.SourceID) == "" {
			return nil, types.NewMCPError("MISSING_SOURCE_ID", "Source node ID is required", map[string]interface{}{
				"field": "sourceId",
			})
		}
		if strings.TrimSpace(args.TargetID) == "" {
			return nil, types.NewMCPError("MISSING_TARGET_ID", "Target node ID is required", map[string]interface{}{
				"field": "targetId",
			})
		}

		edge, err := mgr.CreateEdge(args.SourceID, args.TargetID, args.Label)
		if err != nil {
			return nil, wrapStoreError(err, "create-edge", "")
		}

		return &mcpsdk.CallToolResultFor[types.EdgeResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Connected %s -> %s (edge %s)", edge.SourceID, edge.TargetID, edge.ID),
				},
			},
			StructuredContent: edgeToResponse(edge),
		}, nil
	}
}

// deleteEdgeHandler removes an edge by ID
func deleteEdgeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.DeleteEdgeParams, types.DeleteResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.DeleteEdgeParams]) (*mcpsdk.CallToolResultFor[types.DeleteResponse], error) {
		args := params.Arguments
		logToolCall("delete-edge", args)

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError("MISSING_ID", "Edge ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		deleted, err := mgr.DeleteEdge(args.ID)
		if err != nil {
			return nil, wrapStoreError(err, "delete-edge", args.ID)
		}
		if !deleted {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Edge %s not found", args.ID), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.DeleteResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Deleted edge %s", args.ID),
				},
			},
			StructuredContent: types.DeleteResponse{ID: args.ID, Deleted: true},
		}, nil
	}
}
