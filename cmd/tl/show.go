package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/task"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "tasks",
	Short:   "Show a task in detail",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		g := s.Graph()

		t, err := g.Node(args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(t)
		}

		fmt.Printf("%s: %s\n", t.ID, t.Title)
		fmt.Printf("Status: %s  Priority: %s\n", t.Status, t.Priority)
		if t.Description != "" {
			fmt.Printf("\n%s\n", t.Description)
		}

		fmt.Println("\nSuccess criteria:")
		for _, c := range t.SuccessCriteria {
			fmt.Printf("  %s %s: %s\n", checkbox(c.Done), c.ID, c.Text)
		}
		fmt.Println("Deliverables:")
		for _, d := range t.Deliverables {
			line := fmt.Sprintf("  %s %s: %s", checkbox(d.Done), d.ID, d.Text)
			if d.FilePath != "" {
				line += " (" + d.FilePath + ")"
			}
			fmt.Println(line)
		}
		if len(t.FixItems) > 0 {
			fmt.Println("Fix items:")
			for _, f := range t.FixItems {
				fmt.Printf("  %s %s: %s\n", checkbox(f.Done), f.ID, f.Text)
			}
		}

		if blockers := g.Incoming(t.ID); len(blockers) > 0 {
			fmt.Printf("\nBlocked by: %s\n", strings.Join(blockers, ", "))
			if t.DependencyRationale != "" {
				fmt.Printf("Rationale: %s\n", t.DependencyRationale)
			}
		}
		if blocks := g.Outgoing(t.ID); len(blocks) > 0 {
			fmt.Printf("Blocks: %s\n", strings.Join(blocks, ", "))
		}
		if len(t.RelatedFiles) > 0 {
			fmt.Printf("Files: %s\n", strings.Join(t.RelatedFiles, ", "))
		}
		if t.Notes != "" {
			fmt.Printf("\nNotes:\n%s\n", t.Notes)
		}
		if len(t.Verifications) > 0 {
			fmt.Println("\nVerifications:")
			for _, v := range t.Verifications {
				fmt.Printf("  %s by %s at %s", v.Outcome, v.Verifier, v.Timestamp.Format("2006-01-02 15:04"))
				if v.Note != "" {
					fmt.Printf(" - %s", v.Note)
				}
				fmt.Println()
			}
		}

		fmt.Printf("\nCreated: %s  Updated: %s\n",
			t.CreatedAt.Format("2006-01-02 15:04"),
			t.UpdatedAt.Format("2006-01-02 15:04"))
		if t.CompletedAt != nil {
			fmt.Printf("Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// statusGlyph maps a status to a one-character marker for list views.
func statusGlyph(s task.Status) string {
	switch s {
	case task.StatusReady:
		return "○"
	case task.StatusInProgress:
		return "◐"
	case task.StatusInReview:
		return "◎"
	case task.StatusBlocked:
		return "●"
	case task.StatusCompleted:
		return "✓"
	}
	return "?"
}

func init() {
	rootCmd.AddCommand(showCmd)
}
