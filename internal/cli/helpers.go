package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/hindsight/internal/config"
	"github.com/runnerr0/hindsight/internal/logging"
	"github.com/runnerr0/hindsight/internal/store"
)

// loadConfig resolves the config for a command: an explicit --config path
// must exist, otherwise the default path is used (created on first run).
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		cfg, err := config.Load(globals.Config)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the analysis store described by the config.
func openStore(globals *GlobalFlags) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if globals != nil && globals.Verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Logging.TimeFormat)

	st, err := store.Open(cfg.Storage.BaseDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	return st, cfg, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// savedSince reports whether a saved-at timestamp falls within the last
// days days. Timestamps use the store's sortable format, so the cutoff
// comparison is plain string ordering. Unparseable stamps are kept.
func savedSince(savedAt string, days int, now time.Time) bool {
	if days <= 0 || savedAt == "" {
		return true
	}
	cutoff := now.AddDate(0, 0, -days).Format(store.TimestampFormat)
	return savedAt >= cutoff
}
