package cli

import (
	"fmt"

	"github.com/runnerr0/hindsight/internal/config"
	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for ReindexCommand.
func (c *ReindexCommand) Execute(args []string) error {
	st, cfg, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st, cfg)
}

// executeWithStore rebuilds the index on a provided store (for testing).
func (c *ReindexCommand) executeWithStore(st *store.Store, cfg *config.Config) error {
	batch := c.BatchSize
	if batch <= 0 && cfg != nil {
		batch = cfg.Maintenance.ReindexBatchSize
	}

	res, err := st.Reindex(batch)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"files_scanned": res.FilesScanned,
			"indexed":       res.Indexed,
			"skipped":       res.Skipped,
		})
	}

	fmt.Printf("Reindexed %d of %d files", res.Indexed, res.FilesScanned)
	if res.Skipped > 0 {
		fmt.Printf(" (%d skipped)", res.Skipped)
	}
	fmt.Println()
	return nil
}

// Execute implements the go-flags Commander interface for CleanupCommand.
func (c *CleanupCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore sweeps temp files on a provided store (for testing).
func (c *CleanupCommand) executeWithStore(st *store.Store) error {
	removed, err := st.RemoveTempFiles()
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"removed": len(removed),
			"files":   removed,
		})
	}

	if len(removed) == 0 {
		fmt.Println("No temporary files found.")
		return nil
	}
	fmt.Printf("Removed %d temporary files.\n", len(removed))
	if c.globals != nil && c.globals.Verbose {
		for _, f := range removed {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for MigrateCommand.
func (c *MigrateCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore backfills metadata on a provided store (for testing).
func (c *MigrateCommand) executeWithStore(st *store.Store) error {
	migrated, err := st.MigrateMetadata()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{"migrated": migrated})
	}

	if migrated == 0 {
		fmt.Println("All documents already carry metadata.")
		return nil
	}
	fmt.Printf("Backfilled metadata on %d documents.\n", migrated)
	return nil
}
