// Package config loads inkfold configuration from an optional YAML file
// with environment variable overrides for the common knobs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all inkfold configuration.
type Config struct {
	// Guards tunes the merge safety guards.
	Guards GuardsConfig `yaml:"guards"`

	// Patches controls line patch application.
	Patches PatchesConfig `yaml:"patches"`

	// Storage configures the audit store.
	Storage StorageConfig `yaml:"storage"`

	// Logging configures categorized debug logging.
	Logging LoggingConfig `yaml:"logging"`

	// Batch configures parallel runs.
	Batch BatchConfig `yaml:"batch"`
}

// GuardsConfig tunes the merge safety guards.
type GuardsConfig struct {
	// MinLengthRatio rejects full replacements shorter than this fraction
	// of the base document. Strict comparison; 0.5 means "less than half".
	MinLengthRatio float64 `yaml:"min_length_ratio"`
}

// PatchesConfig controls line patch application.
type PatchesConfig struct {
	// ValidateStructures relocates patches that would split a protected
	// region. Disable only for documents known to have no structure.
	ValidateStructures bool `yaml:"validate_structures"`
}

// StorageConfig configures the audit store.
type StorageConfig struct {
	// DatabasePath is the SQLite file recording pipeline runs. Empty
	// disables auditing.
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures categorized debug logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// BatchConfig configures parallel runs.
type BatchConfig struct {
	// Concurrency bounds simultaneous pipeline invocations in batch mode.
	Concurrency int `yaml:"concurrency"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Guards:  GuardsConfig{MinLengthRatio: 0.5},
		Patches: PatchesConfig{ValidateStructures: true},
		Storage: StorageConfig{DatabasePath: ".inkfold/audit.db"},
		Logging: LoggingConfig{Level: "info"},
		Batch:   BatchConfig{Concurrency: 4},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults plus env.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Guards.MinLengthRatio < 0 || cfg.Guards.MinLengthRatio > 1 {
		return nil, fmt.Errorf("guards.min_length_ratio must be in [0,1], got %v", cfg.Guards.MinLengthRatio)
	}
	if cfg.Batch.Concurrency < 1 {
		cfg.Batch.Concurrency = 1
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INKFOLD_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("INKFOLD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INKFOLD_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("INKFOLD_MIN_LENGTH_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Guards.MinLengthRatio = f
		}
	}
}
