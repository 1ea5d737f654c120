package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/storage"
	"github.com/taskloom/taskloom/internal/task"
)

var checkCmd = &cobra.Command{
	Use:     "check <task-id> <item-id>",
	GroupID: "tasks",
	Short:   "Mark a criterion, deliverable, or fix item done",
	Long: `Mark a tracked item done. Item ids are shown by 'tl show': c1, c2
for criteria, d1, d2 for deliverables, f1 for fix items.

Checking the last open item moves the task to in_review; it still
needs 'tl approve' to complete.

Examples:
  tl check t-4f2a1c c1
  tl check t-4f2a1c d1 --path cmd/server/auth.go`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		return setItemDone(args[0], args[1], true, path)
	},
}

var uncheckCmd = &cobra.Command{
	Use:     "uncheck <task-id> <item-id>",
	GroupID: "tasks",
	Short:   "Mark a tracked item not done",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setItemDone(args[0], args[1], false, "")
	},
}

func setItemDone(taskID, itemID string, done bool, filePath string) error {
	return mutate(func(s *storage.Store) error {
		g := s.Graph()
		t, err := g.Node(taskID)
		if err != nil {
			return err
		}

		// Try each item list in turn; ValidationError means "not in
		// this list", so fall through.
		old := t.Clone()
		if err := t.SetCriterionDone(itemID, done); err != nil {
			if err := t.SetDeliverableDone(itemID, done, filePath); err != nil {
				if err := t.SetFixItemDone(itemID, done); err != nil {
					return fmt.Errorf("task %s has no item %q", taskID, itemID)
				}
			}
		}

		g.RefreshAllStatuses()
		s.Index().UpdateTask(t, old)

		if jsonOutput() {
			return printJSON(t)
		}
		verb := "Checked"
		if !done {
			verb = "Unchecked"
		}
		fmt.Printf("%s %s on %s [%s]\n", verb, itemID, taskID, t.Status)
		return nil
	})
}

var approveCmd = &cobra.Command{
	Use:     "approve <id>",
	GroupID: "tasks",
	Short:   "Approve an in-review task, completing it",
	Long: `Complete a task that is in review. This is the only way a task
reaches completed; checking every item only gets it to in_review.

Completing a task unblocks its dependents.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			t, err := g.Node(args[0])
			if err != nil {
				return err
			}
			old := t.Clone()
			if err := t.Approve(); err != nil {
				return err
			}
			g.RefreshAllStatuses()
			s.Index().UpdateTask(t, old)

			if jsonOutput() {
				return printJSON(t)
			}
			fmt.Printf("Approved %s: %s\n", t.ID, t.Title)
			for _, dep := range g.Outgoing(t.ID) {
				if d, err := g.Node(dep); err == nil && d.Status != task.StatusBlocked {
					fmt.Printf("  unblocked %s [%s]\n", d.ID, d.Status)
				}
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:     "verify <id> <outcome>",
	GroupID: "tasks",
	Short:   "Record a verification of completed work",
	Long: `Record an external verification: accepted, rejected, or
revision_requested. A rejection or revision request adds a fix item
when --fix is given, reopening the task.

Examples:
  tl verify t-4f2a1c accepted
  tl verify t-4f2a1c revision_requested --note "error path untested" --fix "cover error path"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		fixes, _ := cmd.Flags().GetStringArray("fix")

		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			t, err := g.Node(args[0])
			if err != nil {
				return err
			}
			old := t.Clone()
			if err := t.AddVerification(task.Verification{
				Verifier:  actorName(),
				Outcome:   args[1],
				Timestamp: time.Now(),
				Note:      note,
			}); err != nil {
				return err
			}
			base := len(t.FixItems)
			for i, text := range fixes {
				id := fmt.Sprintf("f%d", base+i+1)
				if err := t.AddFixItem(id, text); err != nil {
					return err
				}
			}
			g.RefreshAllStatuses()
			s.Index().UpdateTask(t, old)

			if jsonOutput() {
				return printJSON(t)
			}
			fmt.Printf("Recorded %s on %s [%s]\n", args[1], t.ID, t.Status)
			return nil
		})
	},
}

func init() {
	checkCmd.Flags().String("path", "", "File path for a completed deliverable")
	verifyCmd.Flags().String("note", "", "Verification note")
	verifyCmd.Flags().StringArray("fix", nil, "Fix item to add (repeatable)")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(uncheckCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(verifyCmd)
}
