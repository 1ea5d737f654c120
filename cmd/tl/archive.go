package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/archive"
	"github.com/taskloom/taskloom/internal/storage"
	"github.com/taskloom/taskloom/internal/task"
)

var archiveCmd = &cobra.Command{
	Use:     "archive",
	GroupID: "project",
	Short:   "Move completed tasks into the archive database",
	Long: `Move every completed task that nothing depends on into the sqlite
archive next to the document. The live graph stays small; archived
tasks remain queryable with 'tl archive list'.

Completed tasks that still block unfinished work are kept: removing
them would change dependents' derived status.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := archivePath()
		if err != nil {
			return err
		}

		return mutate(func(s *storage.Store) error {
			g := s.Graph()

			var archivable []*task.Task
			for _, t := range g.Nodes() {
				if t.Status != task.StatusCompleted {
					continue
				}
				blocksOpen := false
				for _, dep := range g.Outgoing(t.ID) {
					if d, err := g.Node(dep); err == nil && d.Status != task.StatusCompleted {
						blocksOpen = true
						break
					}
				}
				if !blocksOpen {
					archivable = append(archivable, t.Clone())
				}
			}
			if len(archivable) == 0 {
				fmt.Println("Nothing to archive.")
				return nil
			}

			ctx := context.Background()
			arch, err := archive.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer arch.Close()

			if err := arch.Store(ctx, archivable); err != nil {
				return err
			}
			for _, t := range archivable {
				if err := g.RemoveNode(t.ID); err != nil {
					return err
				}
			}
			g.RefreshAllStatuses()
			s.Reindex()

			fmt.Printf("Archived %d task(s) to %s\n", len(archivable), dbPath)
			return nil
		})
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dbPath, err := archivePath()
		if err != nil {
			return err
		}

		ctx := context.Background()
		arch, err := archive.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer arch.Close()

		records, err := arch.List(ctx, limit)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("Archive is empty.")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s  %-10s %s (archived %s)\n",
				statusGlyph(r.Status), r.ID, r.Title, r.ArchivedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an archived task in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := archivePath()
		if err != nil {
			return err
		}

		ctx := context.Background()
		arch, err := archive.Open(ctx, dbPath)
		if err != nil {
			return err
		}
		defer arch.Close()

		t, err := arch.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(t)
	},
}

func init() {
	archiveListCmd.Flags().Int("limit", 0, "Maximum rows to list (0 = all)")
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	rootCmd.AddCommand(archiveCmd)
}
