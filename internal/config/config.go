package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rescale/rescale-copy/internal/constants"
)

// Progress display modes accepted by the progress key.
const (
	ProgressAuto   = "auto"   // bars on a terminal, plain lines otherwise
	ProgressBars   = "bars"   // mpb multi-bar, one bar per file plus total
	ProgressSimple = "simple" // single aggregate bar
	ProgressNone   = "none"
)

// Config holds the tunables for a copy session.
type Config struct {
	FileCount      int    `yaml:"file_count"`
	ChunkSize      int    `yaml:"chunk_size"`
	Overwrite      bool   `yaml:"overwrite"`
	CheckDiskSpace bool   `yaml:"check_disk_space"`
	Progress       string `yaml:"progress"`
	LogLevel       string `yaml:"log_level"`
	LogFile        bool   `yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		FileCount:      constants.DefaultFileCount,
		ChunkSize:      constants.ChunkSize,
		Overwrite:      true,
		CheckDiskSpace: true,
		Progress:       ProgressAuto,
		LogLevel:       "info",
	}
}

// Parse reads YAML bytes on top of the defaults. Environment references
// such as ${HOME} are expanded before decoding.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch {
	case c.FileCount < 1:
		return fmt.Errorf("file_count must be at least 1")
	case c.FileCount > constants.MaxFileCount:
		return fmt.Errorf("file_count must be at most %d", constants.MaxFileCount)
	case c.ChunkSize < constants.MinChunkSize:
		return fmt.Errorf("chunk_size must be at least %d", constants.MinChunkSize)
	case c.ChunkSize > constants.MaxChunkSize:
		return fmt.Errorf("chunk_size must be at most %d", constants.MaxChunkSize)
	}

	switch c.Progress {
	case ProgressAuto, ProgressBars, ProgressSimple, ProgressNone:
	default:
		return fmt.Errorf("progress must be one of auto, bars, simple, none (got %q)", c.Progress)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	return nil
}
