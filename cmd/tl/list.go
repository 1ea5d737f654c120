package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "tasks",
	Short:   "List tasks",
	Long: `List tasks, optionally filtered by status, priority, or position in
the graph.

Examples:
  tl list                  # All tasks
  tl list --status blocked # Only blocked tasks
  tl list --roots          # Tasks nothing depends on
  tl list --orphans        # Tasks with no edges at all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()
		idx := s.Index()

		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")
		roots, _ := cmd.Flags().GetBool("roots")
		orphans, _ := cmd.Flags().GetBool("orphans")
		file, _ := cmd.Flags().GetString("related-file")

		var ids []string
		switch {
		case roots:
			ids = idx.RootTasks(g)
		case orphans:
			ids = idx.OrphanTasks(g)
		case status != "":
			st := task.Status(status).Normalize()
			if !st.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}
			ids = idx.ByStatus(st)
		case priority != "":
			p := task.Priority(priority)
			if !p.IsValid() {
				return fmt.Errorf("unknown priority %q", priority)
			}
			ids = idx.ByPriority(p)
		case file != "":
			ids = idx.ByFile(file)
		default:
			ids = g.NodeIDs()
		}

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
		displayTaskList(tasks)
		return nil
	},
}

func displayTaskList(tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	width := terminalWidth()
	for _, t := range tasks {
		line := fmt.Sprintf("%s %-10s [%s] %s", statusGlyph(t.Status), t.ID, t.Priority, t.Title)
		fmt.Println(truncate(line, width))
	}

	counts := make(map[task.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", min(width, 60)))
	fmt.Printf("Total: %d tasks (%d ready, %d in progress, %d in review, %d blocked, %d completed)\n",
		len(tasks),
		counts[task.StatusReady], counts[task.StatusInProgress],
		counts[task.StatusInReview], counts[task.StatusBlocked],
		counts[task.StatusCompleted])
}

// truncate shortens line to at most width runes, ending with an
// ellipsis. Counting runes rather than bytes keeps the status glyphs
// intact on narrow terminals.
func truncate(line string, width int) string {
	r := []rune(line)
	if len(r) <= width || width < 2 {
		return line
	}
	return string(r[:width-1]) + "…"
}

func init() {
	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().String("priority", "", "Filter by priority")
	listCmd.Flags().Bool("roots", false, "Only tasks with no incoming edges")
	listCmd.Flags().Bool("orphans", false, "Only tasks with no edges at all")
	listCmd.Flags().String("related-file", "", "Only tasks referencing this file path")
	rootCmd.AddCommand(listCmd)
}
