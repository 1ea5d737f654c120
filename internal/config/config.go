// Package config wires viper around the tl settings: project
// config.yaml, user config, and TL_-prefixed environment variables,
// with env taking precedence over files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/taskloom/taskloom/internal/configfile"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .taskloom/config.yaml > ~/.config/tl/config.yaml
	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		if projectDir := configfile.FindProjectDir(cwd); projectDir != "" {
			configPath := filepath.Join(projectDir, "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "tl", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over config file.
	// E.g. TL_JSON, TL_ACTOR, TL_LOCK_TIMEOUT.
	v.SetEnvPrefix("TL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("actor", "")
	v.SetDefault("file", "")
	v.SetDefault("lock-timeout", "10s")
	v.SetDefault("backup-count", 3)
	v.SetDefault("watch-debounce", "250ms")
	v.SetDefault("create.require-description", false)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func ensure() *viper.Viper {
	if v == nil {
		_ = Initialize()
	}
	return v
}

// GetString returns a string setting.
func GetString(key string) string { return ensure().GetString(key) }

// GetBool returns a boolean setting.
func GetBool(key string) bool { return ensure().GetBool(key) }

// GetInt returns an integer setting.
func GetInt(key string) int { return ensure().GetInt(key) }

// GetDuration parses a duration setting, falling back to def when the
// value is missing or malformed.
func GetDuration(key string, def time.Duration) time.Duration {
	raw := ensure().GetString(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// Set overrides a setting in memory. Used by tests and by flag
// binding in the command layer.
func Set(key string, value any) { ensure().Set(key, value) }
