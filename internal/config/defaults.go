package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			BaseDir: "analysis_history",
		},
		Logging: LoggingConfig{
			Level:      "info",
			TimeFormat: "15:04:05",
		},
		Maintenance: MaintenanceConfig{
			ReindexBatchSize: 20,
			ExportBatchSize:  10,
		},
		Picker: PickerConfig{
			MinExpiryDays: 7,
			MaxExpiryDays: 45,
		},
		Trades: TradesConfig{
			HistoryFile: "trade_history.json",
		},
	}
}
