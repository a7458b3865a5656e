// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Catalog CatalogConfig `toml:"catalog"`
	Quiz    QuizConfig    `toml:"quiz"`
	Speech  SpeechConfig  `toml:"speech"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig maps catalog browsing settings.
type CatalogConfig struct {
	Start    *int `toml:"start"`
	End      *int `toml:"end"`
	PageSize *int `toml:"page-size"`
}

// QuizConfig maps price quiz settings.
type QuizConfig struct {
	Pool      *string `toml:"pool"`
	MaxDigits *int    `toml:"max-digits"`
}

// SpeechConfig maps synthesizer settings.
type SpeechConfig struct {
	Command *string  `toml:"command"`
	Voice   *string  `toml:"voice"`
	Rate    *float64 `toml:"rate"`
	Mute    *bool    `toml:"mute"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("failed to decode config: unknown key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `suuji config` when no file exists yet.
const Template = `# suuji configuration

[catalog]
# start = 0
# end = 100000
# page-size = 10

[quiz]
# pool = "default"
# max-digits = 5

[speech]
# command = "say"      # say, espeak-ng, espeak; empty picks one for the platform
# voice = "Kyoko"
# rate = 1.0
# mute = false

[log]
# level = "info"
# file = ""            # defaults to the data directory for full-screen commands
`

// EnsureFile writes Template to path unless a file already exists there.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
