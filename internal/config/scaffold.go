package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the shape of a project config.yaml. Fields map 1:1 to
// viper keys; anything omitted falls back to the defaults set in
// Initialize.
type FileConfig struct {
	Actor         string `yaml:"actor,omitempty"`
	JSON          bool   `yaml:"json,omitempty"`
	LockTimeout   string `yaml:"lock-timeout,omitempty"`
	BackupCount   int    `yaml:"backup-count,omitempty"`
	WatchDebounce string `yaml:"watch-debounce,omitempty"`
}

// WriteScaffold writes a starter config.yaml into projectDir, seeded
// with the current defaults. Does nothing if the file already exists.
func WriteScaffold(projectDir string) error {
	path := filepath.Join(projectDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := FileConfig{
		LockTimeout:   "10s",
		BackupCount:   3,
		WatchDebounce: "250ms",
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := []byte("# tl project configuration. Environment variables (TL_*) override these.\n")
	if err := os.WriteFile(path, append(header, data...), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
