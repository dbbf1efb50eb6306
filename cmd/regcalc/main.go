// Package main provides the regcalc command-line calculator.
package main

import (
	"bufio"
	"io"
	"os"

	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/leapstack-labs/regcalc/internal/cli"
)

func main() {
	var out io.Writer = os.Stdout

	// Piped results are buffered; atexit flushes them on every exit path,
	// including a run aborted by a cycle.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		buffered := bufio.NewWriter(os.Stdout)
		atexit.Register(func() { _ = buffered.Flush() })
		out = buffered
	}

	atexit.Exit(cli.Execute(os.Stdin, out, os.Stderr, os.Args[1:]))
}
