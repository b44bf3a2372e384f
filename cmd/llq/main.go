package main

import (
	"fmt"
	"os"

	"github.com/llqtool/llq/cli"
)

func main() {
	if err := cli.App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "llq:", err)
		os.Exit(1)
	}
}
