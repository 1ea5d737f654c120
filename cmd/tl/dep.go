package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/analysis"
	"github.com/taskloom/taskloom/internal/storage"
)

var depCmd = &cobra.Command{
	Use:     "dep",
	GroupID: "graph",
	Short:   "Manage dependency edges",
}

var depAddCmd = &cobra.Command{
	Use:   "add <from> <to>",
	Short: "Add an edge: <from> must resolve before <to>",
	Long: `Add a dependency edge. The edge points from the prerequisite to the
dependent: 'tl dep add a b' records that a blocks b.

Adding an edge that would close a cycle is refused unless --force is
given; cycles are legal in the store but usually a modelling mistake.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		force, _ := cmd.Flags().GetBool("force")
		rationale, _ := cmd.Flags().GetString("rationale")

		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			if !force && analysis.WouldCreateCycle(g, from, to) {
				return fmt.Errorf("edge %s -> %s would create a cycle (use --force to add anyway)", from, to)
			}
			if err := g.AddEdge(from, to); err != nil {
				return err
			}
			if rationale != "" {
				t, err := g.Node(to)
				if err != nil {
					return err
				}
				t.SetDependencyRationale(rationale)
			}
			g.RefreshAllStatuses()
			s.Index().InvalidateStructure()
			fmt.Printf("Added dependency: %s blocks %s\n", from, to)
			return nil
		})
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <from> <to>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		return mutate(func(s *storage.Store) error {
			g := s.Graph()
			if err := g.RemoveEdge(from, to); err != nil {
				return err
			}
			g.RefreshAllStatuses()
			s.Index().InvalidateStructure()
			fmt.Printf("Removed dependency: %s no longer blocks %s\n", from, to)
			return nil
		})
	},
}

func init() {
	depAddCmd.Flags().Bool("force", false, "Add the edge even if it creates a cycle")
	depAddCmd.Flags().String("rationale", "", "Record why this dependency exists")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	rootCmd.AddCommand(depCmd)
}
