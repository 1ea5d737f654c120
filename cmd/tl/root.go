package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/configfile"
	"github.com/taskloom/taskloom/internal/storage"
)

var (
	flagFile  string
	flagJSON  bool
	flagActor string
)

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "Task dependency graph tracker",
	Long: `tl tracks tasks and the dependencies between them as a directed
graph stored in a single JSON document.

An edge a -> b means a must be resolved before b can start. Task
statuses are derived from the graph: a task with an unresolved
blocker is blocked, a task with every criterion and deliverable
checked moves to in_review, and only an explicit approve completes
it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "Path to the tasks document (overrides project discovery)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "Actor recorded on verifications")

	rootCmd.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "graph", Title: "Graph Commands:"},
		&cobra.Group{ID: "project", Title: "Project Commands:"},
	)
}

// jsonOutput reports whether --json or TL_JSON asked for machine
// output.
func jsonOutput() bool {
	return flagJSON || config.GetBool("json")
}

func actorName() string {
	if flagActor != "" {
		return flagActor
	}
	if a := config.GetString("actor"); a != "" {
		return a
	}
	return os.Getenv("USER")
}

// tasksPath resolves the document path: --file flag, then TL_FILE,
// then the nearest .taskloom directory walking up from CWD.
func tasksPath() (string, error) {
	if flagFile != "" {
		return flagFile, nil
	}
	if f := config.GetString("file"); f != "" {
		return f, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	projectDir := configfile.FindProjectDir(cwd)
	if projectDir == "" {
		return "", fmt.Errorf("no %s directory found (run 'tl init' first, or pass --file)", configfile.DirName)
	}

	cfg, err := configfile.Load(projectDir)
	if err != nil {
		return "", err
	}
	if cfg == nil {
		cfg = configfile.DefaultConfig()
	}
	return cfg.TasksPath(projectDir), nil
}

// openStore loads the document read-only. Mutating commands go
// through mutate instead.
func openStore() (*storage.Store, error) {
	path, err := tasksPath()
	if err != nil {
		return nil, err
	}
	s, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	s.SetBackupCount(config.GetInt("backup-count"))
	return s, nil
}

// mutate runs fn against the store under the document lock and saves
// on success.
func mutate(fn func(*storage.Store) error) error {
	path, err := tasksPath()
	if err != nil {
		return err
	}
	timeout := config.GetDuration("lock-timeout", storage.DefaultLockTimeout)
	return storage.WithLock(context.Background(), path, timeout, func() error {
		s, err := storage.Open(path)
		if err != nil {
			return err
		}
		s.SetBackupCount(config.GetInt("backup-count"))
		if err := fn(s); err != nil {
			return err
		}
		return s.Save()
	})
}

// archivePath resolves the sqlite archive next to the tasks document.
func archivePath() (string, error) {
	path, err := tasksPath()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if filepath.Base(dir) == configfile.DirName {
		if cfg, err := configfile.Load(dir); err == nil && cfg != nil {
			return cfg.ArchivePath(dir), nil
		}
	}
	return filepath.Join(dir, "archive.db"), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// terminalWidth returns the display width, defaulting to 80 when
// stdout is not a terminal.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
