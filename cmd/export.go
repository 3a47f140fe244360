package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exportCmd dumps one board's nodes and edges as JSON
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a board's nodes and edges as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, s, err := GetManager()
		if err != nil {
			return err
		}
		defer s.Close()
		defer mgr.Close()

		boardID, _ := cmd.Flags().GetString("board")
		export, err := mgr.ExportGraph(boardID)
		if err != nil {
			return fmt.Errorf("export graph: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	},
}

func init() {
	exportCmd.Flags().String("board", "", "board to export (defaults to the default board)")
	rootCmd.AddCommand(exportCmd)
}
