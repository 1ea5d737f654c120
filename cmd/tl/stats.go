package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/analysis"
	"github.com/taskloom/taskloom/internal/task"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "project",
	Short:   "Show project statistics",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		counts := make(map[task.Status]int)
		for _, t := range g.Nodes() {
			counts[t.Status]++
		}
		components := analysis.ConnectedComponents(g)

		type stats struct {
			Name       string              `json:"name"`
			Tasks      int                 `json:"tasks"`
			Edges      int                 `json:"edges"`
			ByStatus   map[task.Status]int `json:"by_status"`
			Roots      int                 `json:"roots"`
			Orphans    int                 `json:"orphans"`
			Components int                 `json:"components"`
			HasCycle   bool                `json:"has_cycle"`
		}
		st := stats{
			Name:       g.Meta().Name,
			Tasks:      g.Len(),
			Edges:      g.EdgeCount(),
			ByStatus:   counts,
			Roots:      len(g.Roots()),
			Orphans:    len(g.Orphans()),
			Components: len(components),
			HasCycle:   analysis.HasCycle(g),
		}

		if jsonOutput() {
			return printJSON(st)
		}

		fmt.Printf("Project: %s\n", st.Name)
		fmt.Printf("Tasks: %d  Edges: %d  Components: %d\n", st.Tasks, st.Edges, st.Components)
		fmt.Printf("Roots: %d  Orphans: %d\n", st.Roots, st.Orphans)
		fmt.Printf("Status: %d ready, %d in progress, %d in review, %d blocked, %d completed\n",
			counts[task.StatusReady], counts[task.StatusInProgress],
			counts[task.StatusInReview], counts[task.StatusBlocked],
			counts[task.StatusCompleted])
		if st.HasCycle {
			fmt.Println("Warning: the dependency graph contains a cycle (see 'tl cycles')")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
