package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/hindsight/internal/logging"
	"github.com/runnerr0/hindsight/internal/trades"
)

// Execute implements the go-flags Commander interface for TradesCommand.
func (c *TradesCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	path := c.File
	if path == "" {
		path = cfg.Trades.HistoryFile
	}

	level := cfg.Logging.Level
	if c.globals != nil && c.globals.Verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Logging.TimeFormat)

	journal := trades.NewJournal(path, nil, logger)
	return c.executeWithJournal(journal, os.Stdin)
}

// executeWithJournal runs the command against a provided journal, reading
// any confirmation from in (for testing).
func (c *TradesCommand) executeWithJournal(journal *trades.Journal, in *os.File) error {
	if c.Clear {
		return c.clear(journal, in)
	}

	history, err := journal.Load()
	if err != nil {
		return fmt.Errorf("load trade history: %w", err)
	}

	if c.Analyze != "" {
		return c.analyze(history)
	}
	return c.list(history)
}

func (c *TradesCommand) clear(journal *trades.Journal, in *os.File) error {
	if !c.Force {
		fmt.Printf("Delete trade journal %s? This cannot be undone. [y/N]: ", journal.Path())
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := journal.Clear(); err != nil {
		return fmt.Errorf("clear trade history: %w", err)
	}
	fmt.Println("Trade history cleared.")
	return nil
}

func (c *TradesCommand) analyze(history []trades.Trade) error {
	switch c.Analyze {
	case "macro":
		return printJSON(trades.AnalyzeMacro(history, c.SuccessKey, c.Threshold))
	case "options":
		return printJSON(trades.AnalyzeOptions(history, c.SuccessKey, c.Threshold))
	case "technicals":
		return printJSON(trades.AnalyzeTechnicals(history, c.SuccessKey, c.Threshold))
	case "tags":
		return printJSON(trades.AnalyzeEventTags(history, c.SuccessKey, c.Threshold))
	default:
		return fmt.Errorf("unknown analysis %q (use macro, options, technicals, or tags)", c.Analyze)
	}
}

func (c *TradesCommand) list(history []trades.Trade) error {
	if c.Limit > 0 && len(history) > c.Limit {
		history = history[len(history)-c.Limit:]
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(history)
	}

	if len(history) == 0 {
		fmt.Println("No trades recorded.")
		return nil
	}

	tradeWord := "trades"
	if len(history) == 1 {
		tradeWord = "trade"
	}
	fmt.Printf("Showing %d %s (newest last)\n\n", len(history), tradeWord)

	for i, t := range history {
		headline, _ := t["headline"].(string)
		fmt.Printf("%d. %s\n", i+1, headline)

		meta := ""
		if ts, ok := t["saved_timestamp"].(string); ok && ts != "" {
			meta = ts
		}
		if ticker, ok := t["options_ticker"].(string); ok && ticker != "" {
			if meta != "" {
				meta += " · "
			}
			meta += ticker
		}
		if side, ok := t["option_type"].(string); ok && side != "" {
			if meta != "" {
				meta += " · "
			}
			meta += strings.ToUpper(side)
		}
		if meta != "" {
			fmt.Printf("   %s\n", meta)
		}

		if i < len(history)-1 {
			fmt.Println()
		}
	}

	return nil
}
