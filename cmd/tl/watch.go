package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/storage"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "project",
	Short:   "Watch the document and re-display the task list on change",
	Long: `Show the task list and refresh it whenever the document changes on
disk, e.g. when another tl process saves. Rapid bursts of writes are
debounced. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := tasksPath()
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory, not the file: atomic saves replace the
		// file by rename, which drops a direct file watch.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
		}

		redisplay := func() {
			s, err := storage.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reloading: %v\n", err)
				return
			}
			fmt.Print("\033[H\033[2J") // clear screen
			displayTaskList(s.Graph().Nodes())
			fmt.Fprintf(os.Stderr, "\nWatching %s... (Press Ctrl+C to exit)\n", path)
		}
		redisplay()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		var debounce *time.Timer
		delay := config.GetDuration("watch-debounce", 250*time.Millisecond)
		base := filepath.Base(path)

		for {
			select {
			case <-sigChan:
				fmt.Fprintln(os.Stderr, "\nStopped watching.")
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(delay, redisplay)
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
