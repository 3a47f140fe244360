package cmd

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/techfulness/getsticky/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so AI tools like Claude Code,
Cursor, and other assistants can read and mutate the canvas graph.

The server runs over stdin/stdout and provides tools for:
- Creating, updating, and deleting nodes
- Connecting nodes with edges
- Branching conversations with inherited context
- Appending and searching free-text context
- Managing boards and exporting graph snapshots

The server will run until the client disconnects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	mgr, s, err := GetManager()
	if err != nil {
		return fmt.Errorf("failed to initialize graph manager: %w", err)
	}
	defer s.Close()
	defer mgr.Close()

	impl := &mcpsdk.Implementation{
		Name:    "getsticky",
		Version: version,
	}
	server := mcpsdk.NewServer(impl, &mcpsdk.ServerOptions{})

	if err := mcp.RegisterTools(server, mgr); err != nil {
		return fmt.Errorf("failed to register MCP tools: %w", err)
	}

	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
