package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore prints the document from a provided store (for testing).
func (c *ShowCommand) executeWithStore(st *store.Store) error {
	doc, err := st.Load(c.Args.Path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no analysis at %q", c.Args.Path)
		}
		return fmt.Errorf("load analysis: %w", err)
	}

	if c.Format == "json" || (c.globals != nil && c.globals.JSON) {
		return printJSON(doc)
	}
	if c.Format != "text" {
		return fmt.Errorf("unknown format %q (use text or json)", c.Format)
	}
	return c.printText(doc)
}

func (c *ShowCommand) printText(doc store.Document) error {
	fmt.Printf("Analysis: %s\n", c.Args.Path)

	if m := doc.Metadata(); m != nil {
		if savedAt, ok := m["saved_at"].(string); ok && savedAt != "" {
			fmt.Printf("Saved:    %s\n", savedAt)
		}
		if query, ok := m["query"].(string); ok && query != "" {
			fmt.Printf("Query:    %s\n", query)
		}
	}
	fmt.Println()

	// Stable field order: well-known fields first, the rest alphabetical.
	known := []string{"ticker", "event_date", "price_change", "trend", "pattern_summary", "summary", "success"}
	printed := map[string]bool{"_metadata": true}
	for _, key := range known {
		if v, ok := doc[key]; ok {
			fmt.Printf("%-16s %v\n", key+":", v)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(doc))
	for key := range doc {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Printf("%-16s %v\n", key+":", doc[key])
	}

	return nil
}
