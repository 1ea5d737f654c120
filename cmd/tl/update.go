package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/storage"
	"github.com/taskloom/taskloom/internal/task"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	GroupID: "tasks",
	Short:   "Update a task's fields",
	Long: `Update task content. Adding a criterion or deliverable to a
completed task reopens it: the task drops back to in_progress until
the new item is checked and the task re-approved.

Examples:
  tl update t-4f2a1c --title "Wire up OAuth"
  tl update t-4f2a1c --priority top
  tl update t-4f2a1c --add-criterion "rate limit enforced"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			t, err := g.Node(args[0])
			if err != nil {
				return err
			}
			old := t.Clone()

			changed := false
			if title, _ := cmd.Flags().GetString("title"); title != "" {
				t.Title = title
				changed = true
			}
			if desc, _ := cmd.Flags().GetString("desc"); cmd.Flags().Changed("desc") {
				t.Description = desc
				changed = true
			}
			if notes, _ := cmd.Flags().GetString("notes"); cmd.Flags().Changed("notes") {
				t.Notes = notes
				changed = true
			}
			if p, _ := cmd.Flags().GetString("priority"); p != "" {
				pr := task.Priority(p)
				if !pr.IsValid() {
					return fmt.Errorf("unknown priority %q", p)
				}
				t.Priority = pr
				changed = true
			}
			if texts, _ := cmd.Flags().GetStringArray("add-criterion"); len(texts) > 0 {
				base := len(t.SuccessCriteria)
				for i, text := range texts {
					id := fmt.Sprintf("c%d", base+i+1)
					if err := t.AddCriterion(id, text); err != nil {
						return err
					}
				}
				changed = true
			}
			if texts, _ := cmd.Flags().GetStringArray("add-deliverable"); len(texts) > 0 {
				base := len(t.Deliverables)
				for i, text := range texts {
					id := fmt.Sprintf("d%d", base+i+1)
					if err := t.AddDeliverable(id, text); err != nil {
						return err
					}
				}
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to update (see 'tl update --help')")
			}

			if err := t.Validate(); err != nil {
				return err
			}
			t.Touch()
			g.RefreshAllStatuses()
			s.Index().UpdateTask(t, old)

			if jsonOutput() {
				return printJSON(t)
			}
			fmt.Printf("Updated %s [%s]\n", t.ID, t.Status)
			return nil
		})
	},
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().String("desc", "", "New description")
	updateCmd.Flags().String("notes", "", "New notes")
	updateCmd.Flags().String("priority", "", "New priority: top, second, later")
	updateCmd.Flags().StringArray("add-criterion", nil, "Append a success criterion (repeatable)")
	updateCmd.Flags().StringArray("add-deliverable", nil, "Append a deliverable (repeatable)")
	rootCmd.AddCommand(updateCmd)
}
