// Package cli is llq's command-line entrypoint: a single positional
// argument naming the NDJSON log file to tail.
package cli

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
)

// App is llq's urfave/cli application. main.go calls App.Run(os.Args).
var App = &cli.App{
	Name:      "llq",
	Usage:     "live log query: tail an NDJSON log file and filter it interactively",
	UsageText: "llq <log-file>",
	ArgsUsage: "<log-file>",
	Action:    run,
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowAppHelp(c)
	}

	path := c.Args().First()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot open log file %q: %w", path, err)
	}

	return Run(path)
}
