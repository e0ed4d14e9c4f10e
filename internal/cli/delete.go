package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/hindsight/internal/store"
)

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	st, _, err := openStore(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(st, os.Stdin)
}

// executeWithStore runs the deletion against a provided store, reading
// the confirmation from in (for testing).
func (c *DeleteCommand) executeWithStore(st *store.Store, in *os.File) error {
	if !c.Force {
		fmt.Printf("Delete %s? This cannot be undone. [y/N]: ", c.Args.Path)

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

	deleted, err := st.Delete(c.Args.Path)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"path":    c.Args.Path,
			"deleted": deleted,
		})
	}

	if !deleted {
		fmt.Printf("No analysis at %s, nothing deleted.\n", c.Args.Path)
		return nil
	}
	fmt.Printf("Deleted %s. Run reindex to refresh the index.\n", c.Args.Path)
	return nil
}
