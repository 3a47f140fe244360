package mcp

// Shared helpers for MCP tools (logging, store error translation)

import (
	"errors"
	"log/slog"

	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

func logToolCall(name string, params interface{}) {
	slog.Debug("mcp tool call", "tool", name, "params", params)
}

// wrapStoreError translates store sentinels into protocol errors with
// stable codes; anything else surfaces as STORE_ERROR.
func wrapStoreError(err error, operation, id string) error {
	details := map[string]interface{}{
		"operation": operation,
		"id":        id,
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return types.NewMCPError("NOT_FOUND", err.Error(), details)
	case errors.Is(err, store.ErrProtected):
		return types.NewMCPError("PROTECTED", err.Error(), details)
	case errors.Is(err, store.ErrConstraint):
		return types.NewMCPError("CONSTRAINT_VIOLATION", err.Error(), details)
	default:
		return types.NewMCPError("STORE_ERROR", err.Error(), details)
	}
}
