// Command nanopy is the CLI entry point: lex/parse/run one-shot
// subcommands plus an interactive repl, all wired to the same
// lexer/parser/interp core.
package main

import (
	"fmt"
	"os"

	"github.com/isaacjoffe/nanopy/cmd/nanopy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
