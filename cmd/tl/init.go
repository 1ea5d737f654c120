package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/configfile"
	"github.com/taskloom/taskloom/internal/storage"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "project",
	Short:   "Initialize a task project in the current directory",
	Long: `Create a .taskloom directory with an empty tasks document,
project metadata, and a starter config.yaml.

Examples:
  tl init            # Initialize in the current directory
  tl init --name api # Initialize with an explicit project name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		projectDir := filepath.Join(cwd, configfile.DirName)
		if _, err := os.Stat(projectDir); err == nil {
			return fmt.Errorf("%s already exists", projectDir)
		}
		if err := os.MkdirAll(projectDir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", projectDir, err)
		}

		cfg := configfile.DefaultConfig()
		if err := cfg.Save(projectDir); err != nil {
			return err
		}
		if err := config.WriteScaffold(projectDir); err != nil {
			return err
		}

		// Open creates an empty graph for a missing file; Save
		// materializes it.
		s, err := storage.Open(cfg.TasksPath(projectDir))
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			s.Graph().Rename(name)
		}
		if err := s.Save(); err != nil {
			return err
		}

		fmt.Printf("Initialized task project in %s\n", projectDir)
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "Project name (defaults to the directory name)")
	rootCmd.AddCommand(initCmd)
}
