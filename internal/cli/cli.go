package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List    *ListCommand
	Show    *ShowCommand
	History *HistoryCommand
	Stats   *StatsCommand
	Export  *ExportCommand
	Delete  *DeleteCommand
	Reindex *ReindexCommand
	Cleanup *CleanupCommand
	Migrate *MigrateCommand
	Trades  *TradesCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "hindsight"
	parser.LongDescription = "Flat-file persistence, review, and correlation tooling for market analysis results."

	cmds := &commands{
		List:    &ListCommand{globals: &globals, version: version},
		Show:    &ShowCommand{globals: &globals, version: version},
		History: &HistoryCommand{globals: &globals, version: version},
		Stats:   &StatsCommand{globals: &globals, version: version},
		Export:  &ExportCommand{globals: &globals, version: version},
		Delete:  &DeleteCommand{globals: &globals, version: version},
		Reindex: &ReindexCommand{globals: &globals, version: version},
		Cleanup: &CleanupCommand{globals: &globals, version: version},
		Migrate: &MigrateCommand{globals: &globals, version: version},
		Trades:  &TradesCommand{globals: &globals, version: version},
	}

	parser.AddCommand("list", "List stored analyses", "List indexed analyses, optionally filtered by ticker, pattern, or age.", cmds.List)
	parser.AddCommand("show", "Print one analysis document", "Print the full stored content of a specific analysis document.", cmds.Show)
	parser.AddCommand("history", "Browse the query history", "Browse the recorded query history, with optional search and export.", cmds.History)
	parser.AddCommand("stats", "Show storage statistics", "Show aggregate statistics about stored analyses.", cmds.Stats)
	parser.AddCommand("export", "Export analyses to a JSON file", "Export matching analyses into a single JSON file.", cmds.Export)
	parser.AddCommand("delete", "Delete one analysis file", "Delete one stored analysis file. Prompts unless --force.", cmds.Delete)
	parser.AddCommand("reindex", "Rebuild the analysis index", "Rebuild the analysis index by rescanning the files on disk.", cmds.Reindex)
	parser.AddCommand("cleanup", "Remove leftover temp files", "Remove temporary files left behind by interrupted writes.", cmds.Cleanup)
	parser.AddCommand("migrate", "Backfill document metadata", "Backfill metadata on documents written by older versions.", cmds.Migrate)
	parser.AddCommand("trades", "Inspect the trade journal", "List recorded trades or correlate market snapshots with outcomes.", cmds.Trades)

	return parser, &globals, cmds
}

// Run is the main entry point for the hindsight CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("hindsight %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
