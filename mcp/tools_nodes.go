package mcp

// Node tools: create, get, update, delete, list, branch

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

// createNodeHandler creates a new canvas node
func createNodeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.CreateNodeParams, types.NodeResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CreateNodeParams]) (*mcpsdk.CallToolResultFor[types.NodeResponse], error) {
		args := params.Arguments
		logToolCall("create-node", args)

		if strings.TrimSpace(args.Type) == "" {
			return nil, types.NewMCPError("MISSING_TYPE", "Node type is required", map[string]interface{}{
				"field":        "type",
				"valid_values": store.NodeTypes,
			})
		}

		spec := store.NodeSpec{
			Type:    strings.TrimSpace(args.Type),
			Content: args.Content,
			Context: args.Context,
			BoardID: args.BoardID,
		}
		if strings.TrimSpace(args.ParentID) != "" {
			parent, err := mgr.GetNode(args.ParentID)
			if err != nil {
				return nil, wrapStoreError(err, "create", args.ParentID)
			}
			if parent == nil {
				return nil, types.NewMCPError("PARENT_NOT_FOUND", fmt.Sprintf("Parent node %s not found", args.ParentID), map[string]interface{}{
					"parent_id": args.ParentID,
				})
			}
			spec.ParentID = &parent.ID
		}

		node, err := mgr.CreateNode(ctx, spec)
		if err != nil {
			return nil, wrapStoreError(err, "create", "")
		}

		return &mcpsdk.CallToolResultFor[types.NodeResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Created %s node %s on board %s", node.Type, node.ID, node.BoardID),
				},
			},
			StructuredContent: nodeToResponse(node),
		}, nil
	}
}

// getNodeHandler retrieves one node by ID
func getNodeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.GetNodeParams, types.NodeResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.GetNodeParams]) (*mcpsdk.CallToolResultFor[types.NodeResponse], error) {
		args := params.Arguments

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError("MISSING_ID", "Node ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		node, err := mgr.GetNode(args.ID)
		if err != nil {
			return nil, wrapStoreError(err, "get", args.ID)
		}
		if node == nil {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.ID), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.NodeResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Node %s (%s)", node.ID, node.Type),
				},
			},
			StructuredContent: nodeToResponse(node),
		}, nil
	}
}

// updateNodeHandler applies partial updates to a node
func updateNodeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.UpdateNodeParams, types.NodeResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.UpdateNodeParams]) (*mcpsdk.CallToolResultFor[types.NodeResponse], error) {
		args := params.Arguments
		logToolCall("update-node", args)

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError("MISSING_ID", "Node ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		update := store.NodeUpdate{
			Content:  args.Content,
			Context:  args.Context,
			ParentID: args.ParentID,
		}
		if strings.TrimSpace(args.Type) != "" {
			t := strings.TrimSpace(args.Type)
			if !store.ValidNodeType(t) {
				return nil, types.NewMCPError("INVALID_TYPE", fmt.Sprintf("Unknown node type %q", t), map[string]interface{}{
					"value":        t,
					"valid_values": store.NodeTypes,
				})
			}
			update.Type = &t
		}

		node, err := mgr.UpdateNode(ctx, args.ID, update)
		if err != nil {
			return nil, wrapStoreError(err, "update", args.ID)
		}
		if node == nil {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.ID), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.NodeResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Updated node %s", node.ID),
				},
			},
			StructuredContent: nodeToResponse(node),
		}, nil
	}
}

// deleteNodeHandler removes a node and its attached edges and context
func deleteNodeHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.DeleteNodeParams, types.DeleteResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.DeleteNodeParams]) (*mcpsdk.CallToolResultFor[types.DeleteResponse], error) {
		args := params.Arguments
		logToolCall("delete-node", args)

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError("MISSING_ID", "Node ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		deleted, err := mgr.DeleteNode(args.ID)
		if err != nil {
			return nil, wrapStoreError(err, "delete", args.ID)
		}
		if !deleted {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.ID), map[string]interface{}{
				"id": args.ID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.DeleteResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Deleted node %s", args.ID),
				},
			},
			StructuredContent: types.DeleteResponse{ID: args.ID, Deleted: true},
		}, nil
	}
}

// listNodesHandler lists nodes with optional type and board filters
func listNodesHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.ListNodesParams, types.NodeListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ListNodesParams]) (*mcpsdk.CallToolResultFor[types.NodeListResponse], error) {
		args := params.Arguments

		nodes, err := mgr.ListNodes(args.Type, args.BoardID)
		if err != nil {
			return nil, wrapStoreError(err, "list", "")
		}

		resp := types.NodeListResponse{
			Nodes: nodesToResponses(nodes),
			Count: len(nodes),
		}

		return &mcpsdk.CallToolResultFor[types.NodeListResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Found %d nodes", resp.Count),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}

// branchHandler creates a child node seeded with the parent's inherited context
func branchHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.BranchParams, types.NodeResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.BranchParams]) (*mcpsdk.CallToolResultFor[types.NodeResponse], error) {
		args := params.Arguments
		logToolCall("branch-conversation", args)

		if strings.TrimSpace(args.ParentID) == "" {
			return nil, types.NewMCPError("MISSING_PARENT_ID", "Parent node ID is required", map[string]interface{}{
				"field": "parentId",
			})
		}

		child, err := mgr.BranchNode(ctx, args.ParentID, store.NodeSpec{
			Type:    args.Type,
			Content: args.Content,
			Context: args.Context,
		})
		if err != nil {
			return nil, wrapStoreError(err, "branch", args.ParentID)
		}
		if child == nil {
			return nil, types.NewMCPError("PARENT_NOT_FOUND", fmt.Sprintf("Parent node %s not found", args.ParentID), map[string]interface{}{
				"parent_id": args.ParentID,
			})
		}

		return &mcpsdk.CallToolResultFor[types.NodeResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Branched node %s from %s", child.ID, args.ParentID),
				},
			},
			StructuredContent: nodeToResponse(child),
		}, nil
	}
}

// conversationPathHandler returns a node's ancestor chain, root first
func conversationPathHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.ConversationPathParams, types.PathResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ConversationPathParams]) (*mcpsdk.CallToolResultFor[types.PathResponse], error) {
		args := params.Arguments

		if strings.TrimSpace(args.NodeID) == "" {
			return nil, types.NewMCPError("MISSING_NODE_ID", "Node ID is required", map[string]interface{}{
				"field": "nodeId",
			})
		}

		path, err := mgr.GetConversationPath(args.NodeID)
		if err != nil {
			return nil, wrapStoreError(err, "path", args.NodeID)
		}
		if path == nil {
			return nil, types.NewMCPError("NOT_FOUND", fmt.Sprintf("Node %s not found", args.NodeID), map[string]interface{}{
				"node_id": args.NodeID,
			})
		}

		resp := types.PathResponse{
			NodeID: args.NodeID,
			Path:   nodesToResponses(path),
		}

		return &mcpsdk.CallToolResultFor[types.PathResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Path of %d nodes to %s", len(path), args.NodeID),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}
