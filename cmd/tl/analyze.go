package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/analysis"
)

var sortCmd = &cobra.Command{
	Use:     "sort",
	GroupID: "graph",
	Short:   "Print tasks in dependency order",
	Long: `Print every task in an order where each task appears after all of
its blockers. When the graph contains a cycle the acyclic part is
printed, followed by the tasks trapped in cycles.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		result := analysis.TopologicalSort(g)
		if jsonOutput() {
			return printJSON(result)
		}
		for i, id := range result.Order {
			t, err := g.Node(id)
			if err != nil {
				return err
			}
			fmt.Printf("%3d. %s %s  %s\n", i+1, statusGlyph(t.Status), id, t.Title)
		}
		if result.HasCycle {
			fmt.Printf("\nNot sortable (in a cycle): %s\n", strings.Join(result.CycleNodes, ", "))
		}
		return nil
	},
}

var cyclesCmd = &cobra.Command{
	Use:     "cycles",
	GroupID: "graph",
	Short:   "List dependency cycles",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		cycles := analysis.FindCycles(s.Graph())
		if jsonOutput() {
			return printJSON(cycles)
		}
		if len(cycles) == 0 {
			fmt.Println("No cycles.")
			return nil
		}
		for i, cycle := range cycles {
			fmt.Printf("%d. %s -> %s\n", i+1, strings.Join(cycle, " -> "), cycle[0])
		}
		return nil
	},
}

var pathCmd = &cobra.Command{
	Use:     "path <from> <to>",
	GroupID: "graph",
	Short:   "Find dependency paths between two tasks",
	Long: `Find how <from> reaches <to> through dependency edges. By default
the shortest path is printed; --all lists every simple path.

Examples:
  tl path t-a1 t-d4
  tl path t-a1 t-d4 --all --limit 20`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		if all {
			paths, err := analysis.FindAllPaths(g, args[0], args[1], analysis.Forward, limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(paths)
			}
			if len(paths) == 0 {
				fmt.Printf("No path from %s to %s\n", args[0], args[1])
				return nil
			}
			for i, p := range paths {
				fmt.Printf("%d. %s\n", i+1, strings.Join(p, " -> "))
			}
			return nil
		}

		path, ok, err := analysis.ShortestPath(g, args[0], args[1], analysis.Forward)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(path)
		}
		if !ok {
			fmt.Printf("No path from %s to %s\n", args[0], args[1])
			return nil
		}
		fmt.Println(strings.Join(path, " -> "))
		return nil
	},
}

var criticalCmd = &cobra.Command{
	Use:     "critical",
	GroupID: "graph",
	Short:   "Show the longest dependency chain",
	Long: `Show the critical path: the longest chain of tasks that must
complete strictly one after another. Its length is a lower bound on
how many sequential steps the project needs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		path, length, err := analysis.CriticalPath(g)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(map[string]any{"path": path, "length": length})
		}
		if len(path) == 0 {
			fmt.Println("No tasks.")
			return nil
		}
		fmt.Printf("Critical path (%d edge(s)):\n", length)
		for _, id := range path {
			t, err := g.Node(id)
			if err != nil {
				return err
			}
			fmt.Printf("  %s %s  %s\n", statusGlyph(t.Status), id, t.Title)
		}
		return nil
	},
}

var ancestorsCmd = &cobra.Command{
	Use:     "blockers <id>",
	GroupID: "graph",
	Short:   "List everything a task transitively waits on",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		ids, err := analysis.Ancestors(s.Graph(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(ids)
		}
		if len(ids) == 0 {
			fmt.Printf("%s waits on nothing.\n", args[0])
			return nil
		}
		fmt.Println(strings.Join(ids, "\n"))
		return nil
	},
}

var descendantsCmd = &cobra.Command{
	Use:     "dependents <id>",
	GroupID: "graph",
	Short:   "List everything transitively waiting on a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		ids, err := analysis.Descendants(s.Graph(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(ids)
		}
		if len(ids) == 0 {
			fmt.Printf("Nothing waits on %s.\n", args[0])
			return nil
		}
		fmt.Println(strings.Join(ids, "\n"))
		return nil
	},
}

func init() {
	pathCmd.Flags().Bool("all", false, "List every simple path, not just the shortest")
	pathCmd.Flags().Int("limit", 100, "Maximum number of paths with --all")
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(criticalCmd)
	rootCmd.AddCommand(ancestorsCmd)
	rootCmd.AddCommand(descendantsCmd)
}
