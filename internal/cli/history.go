package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore runs the history lookup against a provided store (for testing).
func (c *HistoryCommand) executeWithStore(st *store.Store) error {
	entries := st.SearchQueryHistory(c.Search, c.Limit)

	if c.Export != "" {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		if err := os.WriteFile(c.Export, data, 0o644); err != nil {
			return fmt.Errorf("write history export: %w", err)
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), c.Export)
		return nil
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(entries)
	}
	return c.printHuman(entries)
}

func (c *HistoryCommand) printHuman(entries []store.QueryEntry) error {
	if len(entries) == 0 {
		if c.Search != "" {
			fmt.Printf("No queries found matching %q\n", c.Search)
		} else {
			fmt.Println("No queries recorded.")
		}
		return nil
	}

	entryWord := "entries"
	if len(entries) == 1 {
		entryWord = "entry"
	}
	fmt.Printf("Query history (%d %s)\n\n", len(entries), entryWord)

	for i, e := range entries {
		fmt.Printf("%d. %s\n", i+1, e.Query)

		meta := e.Timestamp
		if e.ResultType != "" {
			meta += " · " + e.ResultType
		}
		if e.Ticker != "" {
			meta += " · " + e.Ticker
		} else if e.DominantTicker != "" {
			meta += " · " + e.DominantTicker
		}
		fmt.Printf("   %s\n", meta)
		fmt.Printf("   %s\n", e.FilePath)

		if i < len(entries)-1 {
			fmt.Println()
		}
	}

	return nil
}
