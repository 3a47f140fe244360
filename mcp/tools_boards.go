package mcp

// Board and graph-level tools: boards CRUD, export, stats

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/types"
)

// createBoardHandler creates a new board
func createBoardHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.CreateBoardParams, types.BoardResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.CreateBoardParams]) (*mcpsdk.CallToolResultFor[types.BoardResponse], error) {
		args := params.Arguments
		logToolCall("create-board", args)

		if strings.TrimSpace(args.Name) == "" {
			return nil, types.NewMCPError("MISSING_NAME", "Board name is required", map[string]interface{}{
				"field": "name",
			})
		}

		board, err := mgr.CreateBoard(strings.TrimSpace(args.Name), args.Slug, args.ProjectID)
		if err != nil {
			return nil, wrapStoreError(err, "create-board", "")
		}

		return &mcpsdk.CallToolResultFor[types.BoardResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Created board '%s' with ID: %s", board.Name, board.ID),
				},
			},
			StructuredContent: boardToResponse(board),
		}, nil
	}
}

// deleteBoardHandler deletes a board and everything on it
func deleteBoardHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.DeleteBoardParams, types.DeleteResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.DeleteBoardParams]) (*mcpsdk.CallToolResultFor[types.DeleteResponse], error) {
		args := params.Arguments
		logToolCall("delete-board", args)

		if strings.TrimSpace(args.ID) == "" {
			return nil, types.NewMCPError("MISSING_ID", "Board ID is required", map[string]interface{}{
				"field": "id",
			})
		}

		if err := mgr.DeleteBoard(args.ID); err != nil {
			return nil, wrapStoreError(err, "delete-board", args.ID)
		}

		return &mcpsdk.CallToolResultFor[types.DeleteResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Deleted board %s", args.ID),
				},
			},
			StructuredContent: types.DeleteResponse{ID: args.ID, Deleted: true},
		}, nil
	}
}

// listBoardsHandler lists boards with an optional project filter
func listBoardsHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.ListBoardsParams, types.BoardListResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ListBoardsParams]) (*mcpsdk.CallToolResultFor[types.BoardListResponse], error) {
		args := params.Arguments

		boards, err := mgr.ListBoards(args.ProjectID)
		if err != nil {
			return nil, wrapStoreError(err, "list-boards", "")
		}

		resp := types.BoardListResponse{Count: len(boards)}
		for i := range boards {
			resp.Boards = append(resp.Boards, boardToResponse(&boards[i]))
		}

		return &mcpsdk.CallToolResultFor[types.BoardListResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Found %d boards", resp.Count),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}

// exportGraphHandler snapshots one board's nodes and edges
func exportGraphHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.ExportGraphParams, types.GraphExportResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.ExportGraphParams]) (*mcpsdk.CallToolResultFor[types.GraphExportResponse], error) {
		args := params.Arguments

		export, err := mgr.ExportGraph(args.BoardID)
		if err != nil {
			return nil, wrapStoreError(err, "export", args.BoardID)
		}

		resp := types.GraphExportResponse{
			BoardID: export.BoardID,
			Nodes:   nodesToResponses(export.Nodes),
		}
		for i := range export.Edges {
			resp.Edges = append(resp.Edges, edgeToResponse(&export.Edges[i]))
		}

		return &mcpsdk.CallToolResultFor[types.GraphExportResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("Exported board %s: %d nodes, %d edges", export.BoardID, len(export.Nodes), len(export.Edges)),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}

// statsHandler reports aggregate graph counts
func statsHandler(mgr *graph.Manager) mcpsdk.ToolHandlerFor[types.StatsParams, types.StatsResponse] {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[types.StatsParams]) (*mcpsdk.CallToolResultFor[types.StatsResponse], error) {
		stats, err := mgr.GetStats()
		if err != nil {
			return nil, wrapStoreError(err, "stats", "")
		}

		resp := types.StatsResponse{
			Nodes:          stats.Nodes,
			NodesByType:    stats.NodesByType,
			Edges:          stats.Edges,
			Boards:         stats.Boards,
			Projects:       stats.Projects,
			ContextEntries: stats.ContextEntries,
		}

		return &mcpsdk.CallToolResultFor[types.StatsResponse]{
			Content: []mcpsdk.Content{
				&mcpsdk.TextContent{
					Text: fmt.Sprintf("%d nodes, %d edges, %d boards, %d projects", stats.Nodes, stats.Edges, stats.Boards, stats.Projects),
				},
			},
			StructuredContent: resp,
		}, nil
	}
}
