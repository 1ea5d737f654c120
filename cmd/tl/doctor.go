package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/analysis"
	"github.com/taskloom/taskloom/internal/atomicfile"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "project",
	Short:   "Check the document for consistency problems",
	Long: `Verify the tasks document: index consistency, per-task field
constraints, dependency cycles, and available backups. Exits
non-zero when the document fails verification.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		failed := false
		report := func(name string, err error) {
			if err != nil {
				failed = true
				fmt.Printf("✗ %s: %v\n", name, err)
				return
			}
			fmt.Printf("✓ %s\n", name)
		}

		report("edge indices consistent", g.Validate())

		var fieldErr error
		for _, t := range g.Nodes() {
			if err := t.Validate(); err != nil {
				fieldErr = fmt.Errorf("task %s: %w", t.ID, err)
				break
			}
		}
		report("task fields valid", fieldErr)

		if cycles := analysis.FindCycles(g); len(cycles) > 0 {
			fmt.Printf("! %d cycle(s) present (legal but usually unintended, see 'tl cycles')\n", len(cycles))
		} else {
			fmt.Println("✓ no cycles")
		}

		backups, err := atomicfile.ListBackups(s.Path())
		if err != nil {
			report("backups readable", err)
		} else {
			fmt.Printf("✓ %d backup(s)", len(backups))
			if len(backups) > 0 {
				fmt.Printf(", newest %s", filepath.Base(backups[0]))
			}
			fmt.Println()
		}

		if failed {
			return fmt.Errorf("document failed verification")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
