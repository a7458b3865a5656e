// Package config provides XDG paths and the TOML config file.
package config

import (
	"os"
	"path/filepath"
)

const appName = "suuji"

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME or ~/.local/share.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

func dataPath(name string) string {
	return filepath.Join(XDGDataHome(), appName, name)
}

// DefaultDBPath is where price pools are stored.
func DefaultDBPath() string {
	return dataPath(appName + ".db")
}

// DefaultLogPath returns the log file used while a full-screen UI owns the terminal.
func DefaultLogPath() string {
	return dataPath(appName + ".log")
}

func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
