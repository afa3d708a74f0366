package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// An explicit -config path wins over the standard locations.
func Load() (*Config, error) {
	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// LoadFile loads a config from path on top of the defaults, ignoring flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// decodeFile merges the YAML document at path into cfg. Lists such as waves
// and levels are replaced, not merged. Unknown keys are rejected and an empty
// file leaves cfg untouched.
func decodeFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// findConfigFile returns the first existing config in the working directory
// or the user config directory.
func findConfigFile() string {
	for _, path := range []string{
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	const app = "midgard-water"
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", app)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), app)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, app)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", app)
}
