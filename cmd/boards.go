package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// boardsCmd lists boards and hosts the board subcommands
var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List and manage canvas boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListBoards(cmd.Flag("project").Value.String())
	},
}

var boardsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, s, err := GetManager()
		if err != nil {
			return err
		}
		defer s.Close()
		defer mgr.Close()

		slug, _ := cmd.Flags().GetString("slug")
		projectID, _ := cmd.Flags().GetString("project")
		board, err := mgr.CreateBoard(args[0], slug, projectID)
		if err != nil {
			return fmt.Errorf("create board: %w", err)
		}
		fmt.Printf("Created board '%s' (%s) with slug %s\n", board.Name, board.ID, board.Slug)
		return nil
	},
}

var boardsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a board and everything on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, s, err := GetManager()
		if err != nil {
			return err
		}
		defer s.Close()
		defer mgr.Close()

		if err := mgr.DeleteBoard(args[0]); err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
		fmt.Printf("Deleted board %s\n", args[0])
		return nil
	},
}

func init() {
	boardsCmd.PersistentFlags().String("project", "", "filter or target project ID")
	boardsCreateCmd.Flags().String("slug", "", "URL slug (derived from name if empty)")
	boardsCmd.AddCommand(boardsCreateCmd)
	boardsCmd.AddCommand(boardsDeleteCmd)
	rootCmd.AddCommand(boardsCmd)
}

func runListBoards(projectID string) error {
	mgr, s, err := GetManager()
	if err != nil {
		return err
	}
	defer s.Close()
	defer mgr.Close()

	boards, err := mgr.ListBoards(projectID)
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tPROJECT")
	for _, b := range boards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Slug, b.ProjectID)
	}
	return w.Flush()
}
