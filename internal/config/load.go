package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)
	cfg.fillCharacterDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads defaults overlaid with a single file, ignoring flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	cfg.fillCharacterDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "StanceIK")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "StanceIK")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "stance-ik")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "stance-ik")
	}
}

// loadFromFile validates a YAML file against the schema, then merges it
// over the existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateDocument(data); err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// fillCharacterDefaults completes characters a file only partially describes.
func (c *Config) fillCharacterDefaults() {
	for i := range c.Characters {
		ch := &c.Characters[i]
		def := DefaultCharacter(ch.Name)
		if ch.MoveSpeed == 0 {
			ch.MoveSpeed = def.MoveSpeed
		}
		if ch.CapsuleRadius == 0 {
			ch.CapsuleRadius = def.CapsuleRadius
		}
		if ch.CapsuleHalfHeight == 0 {
			ch.CapsuleHalfHeight = def.CapsuleHalfHeight
		}
	}
}
