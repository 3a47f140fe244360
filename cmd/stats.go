package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// statsCmd prints aggregate graph counts
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, s, err := GetManager()
		if err != nil {
			return err
		}
		defer s.Close()
		defer mgr.Close()

		stats, err := mgr.GetStats()
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}

		fmt.Printf("Nodes:           %d\n", stats.Nodes)

		types := make([]string, 0, len(stats.NodesByType))
		for t := range stats.NodesByType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Printf("  %-14s %d\n", t+":", stats.NodesByType[t])
		}

		fmt.Printf("Edges:           %d\n", stats.Edges)
		fmt.Printf("Boards:          %d\n", stats.Boards)
		fmt.Printf("Projects:        %d\n", stats.Projects)
		fmt.Printf("Context entries: %d\n", stats.ContextEntries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
