package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/storage"
	"github.com/taskloom/taskloom/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	GroupID: "tasks",
	Short:   "Create a new task",
	Long: `Create a task. Every task needs at least one success criterion and
one deliverable; pass them with repeated flags.

Examples:
  tl create "Wire up auth" -c "login works" -d "auth.go"
  tl create "Ship v2" -c "tests pass" -c "docs updated" -d "CHANGELOG" -p top
  tl create "Fix flaky test" -c "100 green runs" -d "patch" --blocker t-4f2a1c`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		desc, _ := cmd.Flags().GetString("desc")
		notes, _ := cmd.Flags().GetString("notes")
		id, _ := cmd.Flags().GetString("id")
		priority, _ := cmd.Flags().GetString("priority")
		criteria, _ := cmd.Flags().GetStringArray("criterion")
		deliverables, _ := cmd.Flags().GetStringArray("deliverable")
		blockers, _ := cmd.Flags().GetStringSlice("blocker")
		files, _ := cmd.Flags().GetStringSlice("related-file")
		rationale, _ := cmd.Flags().GetString("rationale")

		if desc == "" && config.GetBool("create.require-description") {
			return fmt.Errorf("description is required (create.require-description is set)")
		}
		if id == "" {
			id = newTaskID()
		}

		now := time.Now()
		t := &task.Task{
			ID:                  id,
			Title:               title,
			Description:         desc,
			Notes:               notes,
			Priority:            task.Priority(priority),
			RelatedFiles:        files,
			DependencyRationale: rationale,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		for i, text := range criteria {
			t.SuccessCriteria = append(t.SuccessCriteria, task.Criterion{
				ID:   fmt.Sprintf("c%d", i+1),
				Text: text,
			})
		}
		for i, text := range deliverables {
			t.Deliverables = append(t.Deliverables, task.Deliverable{
				ID:   fmt.Sprintf("d%d", i+1),
				Text: text,
			})
		}
		t.SetDefaults()

		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			if err := g.AddNode(t); err != nil {
				return err
			}
			for _, blocker := range blockers {
				if err := g.AddEdge(blocker, id); err != nil {
					return err
				}
			}
			g.RefreshAllStatuses()
			s.Index().UpdateTask(t, nil)

			if jsonOutput() {
				return printJSON(t)
			}
			fmt.Printf("Created task %s: %s [%s]\n", t.ID, t.Title, t.Status)
			return nil
		})
	},
}

// newTaskID returns a fresh short id like t-9f3a2c.
func newTaskID() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return "t-" + hex.EncodeToString(buf)
}

func init() {
	createCmd.Flags().String("desc", "", "Task description")
	createCmd.Flags().String("notes", "", "Free-form notes")
	createCmd.Flags().String("id", "", "Explicit task id (defaults to a generated one)")
	createCmd.Flags().StringP("priority", "p", string(task.PrioritySecond), "Priority: top, second, later")
	createCmd.Flags().StringArrayP("criterion", "c", nil, "Success criterion (repeatable, at least one required)")
	createCmd.Flags().StringArrayP("deliverable", "d", nil, "Deliverable (repeatable, at least one required)")
	createCmd.Flags().StringSlice("blocker", nil, "Ids of tasks that must resolve before this one")
	createCmd.Flags().StringSlice("related-file", nil, "File paths this task touches")
	createCmd.Flags().String("rationale", "", "Why the blockers exist")
	rootCmd.AddCommand(createCmd)
}
