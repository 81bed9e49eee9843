package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project directory holding config, logs and history.
const HomeDirName = ".bulkcomplete"

// EnvHome overrides the home directory.
const EnvHome = "BULKCOMPLETE_HOME"

// GetHome returns the bulkcomplete home directory
// Priority order:
//  1. BULKCOMPLETE_HOME environment variable (if set)
//  2. .bulkcomplete under the current working directory
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, HomeDirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create home directory: %w", err)
	}
	return home, nil
}

// ResolvePaths fills empty file locations with defaults under home
func (c *Config) ResolvePaths(home string) {
	if c.History.DBPath == "" {
		c.History.DBPath = filepath.Join(home, "history.db")
	}
	if c.LockPath == "" {
		c.LockPath = filepath.Join(home, "complete.lock")
	}
}
