package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is the default config file location.
const DefaultConfigPath = "~/.config/hindsight/config.toml"

// Config holds all hindsight configuration.
type Config struct {
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	Picker      PickerConfig      `toml:"picker"`
	Trades      TradesConfig      `toml:"trades"`
}

// StorageConfig locates the analysis directory tree.
type StorageConfig struct {
	BaseDir string `toml:"base_dir"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`       // "debug", "info", "warn", "error"
	TimeFormat string `toml:"time_format"` // log line time format
}

// MaintenanceConfig bounds batch sizes for long-running scans. Batching
// caps peak memory only; everything stays single-threaded.
type MaintenanceConfig struct {
	ReindexBatchSize int `toml:"reindex_batch_size"`
	ExportBatchSize  int `toml:"export_batch_size"`
}

// PickerConfig tunes the option expiry selection window.
type PickerConfig struct {
	MinExpiryDays int `toml:"min_expiry_days"`
	MaxExpiryDays int `toml:"max_expiry_days"`
}

// TradesConfig locates the trade journal file.
type TradesConfig struct {
	HistoryFile string `toml:"history_file"`
}

// Load reads a TOML config file at path and merges it with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path, writing defaults
// there first if no file exists yet.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
