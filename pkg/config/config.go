package config

import (
	"github.com/Dubrzr/folder-merger/pkg/models"
	"github.com/Dubrzr/folder-merger/pkg/scanner"
)

// Config represents the application configuration
type Config struct {
	Merge   MergeConfig   `yaml:"merge"`
	Scanner ScannerConfig `yaml:"scanner"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// MergeConfig holds merge-related settings
type MergeConfig struct {
	// CheckpointPath is the default checkpoint database location
	CheckpointPath string `yaml:"checkpoint_path"`
}

// ScannerConfig holds scanner-related settings
type ScannerConfig struct {
	// ChunkSize is the hashing read size in bytes
	ChunkSize int `yaml:"chunk_size"`
	// FailFast aborts a scan on the first unreadable file
	FailFast bool `yaml:"fail_fast"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Progress bool `yaml:"progress"` // Show progress bars
	Quiet    bool `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format Format `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = disabled)
}

// Format mirrors logging.Format for YAML use
type Format string

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			CheckpointPath: "merge_checkpoint.db",
		},
		Scanner: ScannerConfig{
			ChunkSize: scanner.DefaultChunkSize,
			FailFast:  false,
		},
		Output: OutputConfig{
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
			File:   "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Merge.CheckpointPath == "" {
		return &models.ValidationError{
			Field:   "merge.checkpoint_path",
			Message: "must not be empty",
		}
	}

	if c.Scanner.ChunkSize < 1024 {
		return &models.ValidationError{
			Field:   "scanner.chunk_size",
			Message: "must be at least 1024 bytes",
		}
	}

	validLogFormats := map[Format]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
