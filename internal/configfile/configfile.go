// Package configfile reads and writes the per-project metadata.json
// inside the .taskloom directory. It records which files the project
// uses so other packages never guess at paths.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

// DirName is the project directory created by tl init.
const DirName = ".taskloom"

type Config struct {
	TasksFile   string `json:"tasks_file"`
	ArchiveFile string `json:"archive_file,omitempty"`

	// BackupCount overrides the number of rotated backups kept per
	// save. 0 means the default.
	BackupCount int `json:"backup_count,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		TasksFile:   "tasks.json",
		ArchiveFile: "archive.db",
	}
}

func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ConfigFileName)
}

// Load reads metadata.json from projectDir. Returns (nil, nil) when
// the file does not exist so callers can fall back to defaults.
func Load(projectDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(projectDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	if cfg.TasksFile == "" {
		cfg.TasksFile = DefaultConfig().TasksFile
	}
	return &cfg, nil
}

func (c *Config) Save(projectDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	if err := os.WriteFile(ConfigPath(projectDir), append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// TasksPath resolves the document path relative to projectDir.
func (c *Config) TasksPath(projectDir string) string {
	if filepath.IsAbs(c.TasksFile) {
		return c.TasksFile
	}
	return filepath.Join(projectDir, c.TasksFile)
}

// ArchivePath resolves the archive database path relative to
// projectDir.
func (c *Config) ArchivePath(projectDir string) string {
	name := c.ArchiveFile
	if name == "" {
		name = DefaultConfig().ArchiveFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(projectDir, name)
}

// FindProjectDir walks up from startDir looking for a .taskloom
// directory. Returns the empty string when none is found.
func FindProjectDir(startDir string) string {
	for dir := startDir; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		if dir == filepath.Dir(dir) {
			return ""
		}
	}
}
