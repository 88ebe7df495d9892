package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application settings loaded from the user's config file
type Config struct {
	// DataDir is where the database, log file and exports live
	DataDir string `yaml:"data_dir"`
	// LogFile overrides the default log location inside DataDir
	LogFile string `yaml:"log_file"`
	// Debug enables file logging
	Debug bool `yaml:"debug"`
	// LegacyTagFilter reproduces the historical filter behavior where an
	// active tag selection decides visibility on its own instead of
	// combining with category and search
	LegacyTagFilter bool `yaml:"legacy_tag_filter"`
}

// Default returns the configuration used when no config file exists
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".promptdeck")
	return Config{
		DataDir: dataDir,
		LogFile: filepath.Join(dataDir, "promptdeck.log"),
	}
}

// DefaultPath returns the expected location of the config file
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".promptdeck", "config.yaml")
}

// Load reads the config file at path. A missing or unparseable file is
// not an error: settings fall back to defaults, matching the fail-soft
// policy used for persisted data.
func Load(path string) Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}

	// Re-derive dependent defaults when only data_dir was overridden
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "promptdeck.log")
	}
	return cfg
}

// DBPath returns the SQLite database location for this configuration
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "promptdeck.db")
}

// EnsureDataDir creates the data directory if it does not exist yet
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
