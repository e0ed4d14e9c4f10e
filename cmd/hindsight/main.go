package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/hindsight/internal/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "hindsight: %v\n", err)
		os.Exit(1)
	}
}
