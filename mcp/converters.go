package mcp

import (
	"time"

	"github.com/techfulness/getsticky/internal/semantic"
	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

func nodeToResponse(n *store.Node) types.NodeResponse {
	parentID := ""
	if n.ParentID != nil {
		parentID = *n.ParentID
	}
	return types.NodeResponse{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		Context:   n.Context,
		ParentID:  parentID,
		BoardID:   n.BoardID,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func nodesToResponses(nodes []store.Node) []types.NodeResponse {
	out := make([]types.NodeResponse, 0, len(nodes))
	for i := range nodes {
		out = append(out, nodeToResponse(&nodes[i]))
	}
	return out
}

func edgeToResponse(e *store.Edge) types.EdgeResponse {
	return types.EdgeResponse{
		ID:       e.ID,
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Label:    e.Label,
	}
}

func entryToResponse(c *store.ContextEntry) types.ContextEntry {
	return types.ContextEntry{
		ID:        c.ID,
		NodeID:    c.NodeID,
		Text:      c.Text,
		Source:    c.Source,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func resultsToResponses(results []semantic.Result) []types.SearchResult {
	out := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, types.SearchResult{
			NodeID:  r.NodeID,
			BoardID: r.BoardID,
			Text:    r.Text,
			Source:  r.Source,
			Score:   r.Score,
		})
	}
	return out
}

func boardToResponse(b *store.Board) types.BoardResponse {
	return types.BoardResponse{
		ID:        b.ID,
		Name:      b.Name,
		Slug:      b.Slug,
		ProjectID: b.ProjectID,
	}
}
