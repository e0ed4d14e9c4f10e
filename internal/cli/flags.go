package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ListCommand — list indexed analyses with optional filters.
type ListCommand struct {
	Ticker   string `long:"ticker" description:"Filter historical events by ticker"`
	Pattern  string `long:"pattern" description:"Filter similar-events analyses by pattern"`
	Days     int    `long:"days" description:"Only analyses saved within the last N days"`
	Limit    int    `long:"limit" description:"Maximum entries per section" default:"20"`
	Detailed bool   `long:"detailed" description:"Load each document and show a fuller summary"`

	globals *GlobalFlags
	version string
}

// ShowCommand — print one stored analysis document.
type ShowCommand struct {
	Format string `long:"format" description:"Output format: text | json" default:"text"`

	Args struct {
		Path string `positional-arg-name:"path" description:"Document path (relative to the analysis directory)" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// HistoryCommand — browse the recorded query history.
type HistoryCommand struct {
	Limit  int    `long:"limit" description:"Maximum entries" default:"10"`
	Search string `long:"search" description:"Only queries containing this text"`
	Export string `long:"export" description:"Write matching entries to a JSON file"`

	globals *GlobalFlags
	version string
}

// StatsCommand — show aggregate statistics about stored analyses.
type StatsCommand struct {
	globals *GlobalFlags
	version string
}

// ExportCommand — export analyses into a single JSON file.
type ExportCommand struct {
	Ticker  string `long:"ticker" description:"Only historical events for this ticker"`
	Pattern string `long:"pattern" description:"Only similar-events analyses for this pattern"`

	Args struct {
		Output string `positional-arg-name:"output" description:"Output file path" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// DeleteCommand — delete one stored analysis file.
type DeleteCommand struct {
	Force bool `long:"force" description:"Skip the confirmation prompt"`

	Args struct {
		Path string `positional-arg-name:"path" description:"Document path (relative to the analysis directory)" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ReindexCommand — rebuild the analysis index from the files on disk.
type ReindexCommand struct {
	BatchSize int `long:"batch-size" description:"Files per scan batch (0 uses the configured default)"`

	globals *GlobalFlags
	version string
}

// CleanupCommand — remove leftover temporary files.
type CleanupCommand struct {
	globals *GlobalFlags
	version string
}

// MigrateCommand — backfill metadata on documents written by older versions.
type MigrateCommand struct {
	globals *GlobalFlags
	version string
}

// TradesCommand — inspect the trade journal and correlate outcomes.
type TradesCommand struct {
	File       string  `long:"file" description:"Trade journal file (overrides config)"`
	Analyze    string  `long:"analyze" description:"Correlation analysis: macro | options | technicals | tags"`
	SuccessKey string  `long:"success-key" description:"Trade field holding the outcome" default:"trade_outcome"`
	Threshold  float64 `long:"threshold" description:"Numeric outcomes above this count as wins"`
	Limit      int     `long:"limit" description:"Maximum trades to list" default:"10"`
	Clear      bool    `long:"clear" description:"Delete the trade journal"`
	Force      bool    `long:"force" description:"Skip the --clear confirmation prompt"`

	globals *GlobalFlags
	version string
}
