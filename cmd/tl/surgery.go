package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/storage"
	"github.com/taskloom/taskloom/internal/surgery"
	"github.com/taskloom/taskloom/internal/task"
)

var cutCmd = &cobra.Command{
	Use:     "cut <id>",
	GroupID: "graph",
	Short:   "Remove a task, reconnecting its neighbors",
	Long: `Remove a task and bridge around it: every task that blocked it
comes to block every task it blocked, so no dependency chain is
severed.

Example: with a -> b -> c, 'tl cut b' leaves a -> c.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			old, err := g.Node(args[0])
			if err != nil {
				return err
			}
			removed := old.Clone()
			if err := surgery.Cut(g, args[0]); err != nil {
				return err
			}
			s.Index().UpdateTask(nil, removed)
			fmt.Printf("Cut %s, reconnected %d blocker(s) to %d dependent(s)\n",
				args[0], len(removed.Blockers), len(removed.Edges))
			return nil
		})
	},
}

var insertCmd = &cobra.Command{
	Use:     "insert <after> <before> <title>",
	GroupID: "graph",
	Short:   "Insert a new task between two connected tasks",
	Long: `Split the edge <after> -> <before> with a new task, so the chain
becomes <after> -> new -> <before>. The edge must already exist.

Example:
  tl insert t-a1 t-b2 "Migrate schema" -c "migration applied" -d "migration.sql"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		afterID, beforeID, title := args[0], args[1], args[2]
		id, _ := cmd.Flags().GetString("id")
		criteria, _ := cmd.Flags().GetStringArray("criterion")
		deliverables, _ := cmd.Flags().GetStringArray("deliverable")
		if id == "" {
			id = newTaskID()
		}

		now := time.Now()
		t := &task.Task{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
		for i, text := range criteria {
			t.SuccessCriteria = append(t.SuccessCriteria, task.Criterion{ID: fmt.Sprintf("c%d", i+1), Text: text})
		}
		for i, text := range deliverables {
			t.Deliverables = append(t.Deliverables, task.Deliverable{ID: fmt.Sprintf("d%d", i+1), Text: text})
		}
		t.SetDefaults()

		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			if err := surgery.InsertBetween(g, t, afterID, beforeID); err != nil {
				return err
			}
			s.Index().UpdateTask(t, nil)
			fmt.Printf("Inserted %s between %s and %s\n", t.ID, afterID, beforeID)
			return nil
		})
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <id> <new-parent>",
	GroupID: "graph",
	Short:   "Re-parent a subtree under a different task",
	Long: `Detach a task from all of its current blockers and attach it under
a single new one. The whole dependent subtree follows. The move is
refused when the new parent lies inside the subtree being moved,
since that would create a cycle.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			if err := surgery.MoveSubtree(g, args[0], args[1]); err != nil {
				return err
			}
			s.Index().InvalidateStructure()
			fmt.Printf("Moved %s under %s\n", args[0], args[1])
			return nil
		})
	},
}

var mergeCmd = &cobra.Command{
	Use:     "merge <source> <target>",
	GroupID: "graph",
	Short:   "Merge one task into another",
	Long: `Fold the source task into the target: edges are rewired to the
target, descriptions and tracked items are combined, and the source
is deleted. Edges that would duplicate an existing one or point a
task at itself are dropped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			src, err := g.Node(args[0])
			if err != nil {
				return err
			}
			tgt, err := g.Node(args[1])
			if err != nil {
				return err
			}
			removedSrc := src.Clone()
			oldTgt := tgt.Clone()

			result, err := surgery.Merge(g, args[0], args[1])
			if err != nil {
				return err
			}
			s.Index().UpdateTask(nil, removedSrc)
			s.Index().UpdateTask(result.Merged, oldTgt)

			if jsonOutput() {
				return printJSON(result)
			}
			fmt.Printf("Merged %s into %s (%d edge(s) rewired)\n",
				result.DeletedID, result.Merged.ID, len(result.Rewired))
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	GroupID: "tasks",
	Short:   "Delete a task",
	Long: `Delete a task. Without --cascade only the one task goes, and its
edges with it. With --cascade every task in its dependent subtree is
deleted too, leaves first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cascade, _ := cmd.Flags().GetBool("cascade")
		return mutate(func(s *storage.Store) error {
			g := s.Graph()

			if !cascade {
				t, err := g.Node(args[0])
				if err != nil {
					return err
				}
				removed := t.Clone()
				if err := g.RemoveNode(args[0]); err != nil {
					return err
				}
				g.RefreshAllStatuses()
				s.Index().UpdateTask(nil, removed)
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			}

			order, err := surgery.CascadeDelete(g, args[0])
			if err != nil {
				return err
			}
			s.Reindex()
			fmt.Printf("Deleted %d task(s): %s\n", len(order), strings.Join(order, ", "))
			return nil
		})
	},
}

func init() {
	insertCmd.Flags().String("id", "", "Explicit task id (defaults to a generated one)")
	insertCmd.Flags().StringArrayP("criterion", "c", nil, "Success criterion (repeatable, at least one required)")
	insertCmd.Flags().StringArrayP("deliverable", "d", nil, "Deliverable (repeatable, at least one required)")
	rmCmd.Flags().Bool("cascade", false, "Also delete every dependent task")
	rootCmd.AddCommand(cutCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(rmCmd)
}
