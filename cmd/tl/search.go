package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/task"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	GroupID: "tasks",
	Short:   "Search tasks by keyword",
	Long: `Search task titles, descriptions, and notes. Multiple words match
any task containing at least one of them.

Examples:
  tl search auth
  tl search "flaky test"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		ids := s.Index().Search(args[0])
		tasks := make([]*task.Task, 0, len(ids))
		for _, id := range ids {
			t, err := g.Node(id)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}

		if jsonOutput() {
			return printJSON(tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		displayTaskList(tasks)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
