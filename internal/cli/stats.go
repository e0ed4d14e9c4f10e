package cli

import (
	"fmt"
	"strings"

	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore prints statistics from a provided store (for testing).
func (c *StatsCommand) executeWithStore(st *store.Store) error {
	stats := st.Statistics()

	if c.globals != nil && c.globals.JSON {
		return printJSON(stats)
	}
	return c.printHuman(st, stats)
}

func (c *StatsCommand) printHuman(st *store.Store, stats store.Stats) error {
	fmt.Println("Hindsight Statistics")
	fmt.Println("====================")
	fmt.Printf("Directory:          %s\n", st.BaseDir())
	fmt.Printf("Historical events:  %d\n", stats.TotalHistoricalEvents)
	fmt.Printf("Similar analyses:   %d\n", stats.TotalSimilarEvents)
	fmt.Printf("Queries recorded:   %d\n", stats.TotalQueries)

	if len(stats.TickersAnalyzed) > 0 {
		fmt.Printf("Tickers analyzed:   %s\n", strings.Join(stats.TickersAnalyzed, ", "))
	}
	if stats.MostAnalyzedTicker != "" {
		fmt.Printf("Most analyzed:      %s\n", stats.MostAnalyzedTicker)
	}
	if stats.MostCommonPattern != "" {
		fmt.Printf("Common pattern:     %s\n", stats.MostCommonPattern)
	}
	if stats.MostRecentQuery != "" {
		fmt.Printf("Most recent query:  %s\n", stats.MostRecentQuery)
	}

	return nil
}
