// Command llq-grep is a debug CLI over the reverse package's
// newest-first line reader, for exercising and eyeballing that path
// outside the TUI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/llqtool/llq/reverse"
)

func main() {
	count := flag.Int("n", 0, "print at most n lines (0 means all)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: llq-grep [-n count] <log-file>")
		os.Exit(2)
	}

	r, err := reverse.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "llq-grep:", err)
		os.Exit(1)
	}
	defer r.Close()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for n := 0; *count == 0 || n < *count; n++ {
		line, ok := r.Next()
		if !ok {
			break
		}
		fmt.Fprintln(w, line)
	}
}
