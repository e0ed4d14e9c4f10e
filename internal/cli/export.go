package cli

import (
	"fmt"

	"github.com/runnerr0/hindsight/internal/config"
	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	st, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st, cfg)
}

// executeWithStore runs the export against a provided store (for testing).
func (c *ExportCommand) executeWithStore(st *store.Store, cfg *config.Config) error {
	batch := 0
	if cfg != nil {
		batch = cfg.Maintenance.ExportBatchSize
	}

	data, err := st.Export(c.Args.Output, c.Ticker, c.Pattern, batch)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"output":            c.Args.Output,
			"historical_events": len(data.HistoricalEvents),
			"similar_events":    len(data.SimilarEvents),
			"export_date":       data.ExportDate,
		})
	}

	fmt.Printf("Exported %d historical events and %d similar-event analyses to %s\n",
		len(data.HistoricalEvents), len(data.SimilarEvents), c.Args.Output)
	return nil
}
