package cli

import (
	"fmt"
	"time"

	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st)
}

// executeWithStore runs the listing against a provided store (for testing).
func (c *ListCommand) executeWithStore(st *store.Store) error {
	now := time.Now()

	var events []store.EventSummary
	if c.Ticker != "" {
		events = st.FindHistorical(c.Ticker, "", nil)
	} else {
		events = st.AllHistorical()
	}

	var similar []store.PatternSummary
	if c.Pattern != "" {
		similar = st.FindSimilar(c.Pattern, "")
	} else {
		similar = st.AllSimilar()
	}

	events = filterEvents(events, c.Days, now)
	similar = filterSimilar(similar, c.Days, now)

	if c.Limit > 0 {
		if len(events) > c.Limit {
			events = events[:c.Limit]
		}
		if len(similar) > c.Limit {
			similar = similar[:c.Limit]
		}
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"historical_events": events,
			"similar_events":    similar,
		})
	}
	return c.printHuman(st, events, similar)
}

func (c *ListCommand) printHuman(st *store.Store, events []store.EventSummary, similar []store.PatternSummary) error {
	if len(events) == 0 && len(similar) == 0 {
		fmt.Println("No analyses found.")
		return nil
	}

	if len(events) > 0 {
		fmt.Printf("Historical Events (%d)\n", len(events))
		for i, e := range events {
			fmt.Printf("%d. %s  %+.2f%%  %s\n", i+1, e.EventDate, e.PriceChange, e.Trend)
			fmt.Printf("   %s\n", e.FilePath)
			if e.SavedAt != "" {
				fmt.Printf("   saved %s\n", e.SavedAt)
			}
			if c.Detailed {
				c.printDetail(st, e.FilePath)
			}
		}
	}

	if len(similar) > 0 {
		if len(events) > 0 {
			fmt.Println()
		}
		fmt.Printf("Similar-Event Analyses (%d)\n", len(similar))
		for i, p := range similar {
			fmt.Printf("%d. %s  avg %+.2f%%  consistency %.2f\n", i+1, p.DominantTicker, p.AvgPriceChange, p.ConsistencyScore)
			fmt.Printf("   %s\n", p.FilePath)
			if p.SavedAt != "" {
				fmt.Printf("   saved %s\n", p.SavedAt)
			}
			if c.Detailed {
				c.printDetail(st, p.FilePath)
			}
		}
	}

	return nil
}

// printDetail loads the document behind an index entry and prints the
// fields the summaries leave out. Unreadable files are reported inline
// rather than failing the whole listing.
func (c *ListCommand) printDetail(st *store.Store, path string) {
	doc, err := st.Load(path)
	if err != nil {
		fmt.Printf("   (unreadable: %v)\n", err)
		return
	}
	if t := doc.Str("ticker"); t != "" {
		fmt.Printf("   ticker: %s\n", t)
	}
	if s := doc.Str("summary"); s != "" {
		fmt.Printf("   %s\n", s)
	}
	if m := doc.Metadata(); m != nil {
		if q, ok := m["query"].(string); ok && q != "" {
			fmt.Printf("   query: %s\n", q)
		}
	}
}

func filterEvents(events []store.EventSummary, days int, now time.Time) []store.EventSummary {
	if days <= 0 {
		return events
	}
	kept := events[:0]
	for _, e := range events {
		if savedSince(e.SavedAt, days, now) {
			kept = append(kept, e)
		}
	}
	return kept
}

func filterSimilar(similar []store.PatternSummary, days int, now time.Time) []store.PatternSummary {
	if days <= 0 {
		return similar
	}
	kept := similar[:0]
	for _, p := range similar {
		if savedSince(p.SavedAt, days, now) {
			kept = append(kept, p)
		}
	}
	return kept
}
